// Package api serves dependents lookups over HTTP.
//
// # Routes
//
//	GET    /healthz
//	GET    /v1/owners/{login}
//	GET    /v1/repos/{owner}/{repo}/packages
//	GET    /v1/repos/{owner}/{repo}/dependents/count?package_id=
//	GET    /v1/repos/{owner}/{repo}/dependents?package_id=&min=&same_language=&max_pages=&save=
//	GET    /v1/repos/{owner}/{repo}/snapshots?limit=
//	GET    /v1/snapshots/{id}
//	GET    /v1/snapshots/{id}/diff?against=
//	DELETE /v1/snapshots/{id}
//
// Every response carries an X-Request-ID header, echoed from the request
// or generated. Errors are JSON objects {"code": ..., "message": ...} whose
// status follows [errors.HTTPStatus].
//
// Without against, diff compares {id} with the newest snapshot of the same
// repository and package. Snapshot routes answer 501 when the server has no
// store.
package api
