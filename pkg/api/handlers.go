package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/pierre-ernst/ghnet/pkg/errors"
	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/network"
	"github.com/pierre-ernst/ghnet/pkg/report"
	"github.com/pierre-ernst/ghnet/pkg/store"
)

var (
	errNoRoute = errors.New(errors.ErrCodeNotFound, "no such route")
	errNoStore = errors.New(errors.ErrCodeUnsupported, "snapshots are not enabled on this server")
)

// PackagesResponse lists the packages of a repository.
type PackagesResponse struct {
	Repository *github.Repository `json:"repository"`
	Packages   []network.Package  `json:"packages"`
}

// DependentsResponse is a scan, plus the snapshot id when it was saved.
type DependentsResponse struct {
	*network.Scan
	SnapshotID string `json:"snapshot_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleOwner(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")
	if err := github.ValidateOwner(login); err != nil {
		s.writeError(w, r, err)
		return
	}
	owner, err := s.net.Owner(r.Context(), login)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, owner)
}

// repository resolves the {owner}/{repo} route parameters.
func (s *Server) repository(r *http.Request) (*github.Repository, error) {
	owner, name := chi.URLParam(r, "owner"), chi.URLParam(r, "repo")
	if err := github.ValidateRepoRef(owner, name); err != nil {
		return nil, err
	}
	return s.net.Repository(r.Context(), owner, name)
}

func (s *Server) handlePackages(w http.ResponseWriter, r *http.Request) {
	repo, err := s.repository(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pkgs, err := s.net.ListPackages(r.Context(), repo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, PackagesResponse{Repository: repo, Packages: pkgs})
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	pkgID := r.URL.Query().Get("package_id")
	if err := errors.ValidatePackageID(pkgID); err != nil {
		s.writeError(w, r, err)
		return
	}
	repo, err := s.repository(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.net.DependentsCount(r.Context(), repo, pkgID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, report.Count{Repository: repo.String(), PackageID: pkgID, Dependents: n})
}

func (s *Server) handleDependents(w http.ResponseWriter, r *http.Request) {
	opts, save, err := s.scanOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if save && s.store == nil {
		s.writeError(w, r, errNoStore)
		return
	}
	repo, err := s.repository(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	scan, err := s.net.ListDependents(r.Context(), repo, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := DependentsResponse{Scan: scan}
	if save {
		snap, err := s.store.Save(r.Context(), scan)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.SnapshotID = snap.ID
	}
	render.JSON(w, r, resp)
}

// scanOptions reads the dependents query string. Absent parameters keep
// [network.DefaultScanOptions].
func (s *Server) scanOptions(r *http.Request) (network.ScanOptions, bool, error) {
	q := r.URL.Query()
	opts := network.DefaultScanOptions()
	opts.MaxPages = s.maxPages

	opts.PackageID = q.Get("package_id")
	if err := errors.ValidatePackageID(opts.PackageID); err != nil {
		return opts, false, err
	}
	if v := q.Get("min"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return opts, false, errors.New(errors.ErrCodeInvalidInput, "min must be a non-negative integer")
		}
		opts.MinDependents = n
	}
	if v := q.Get("same_language"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, false, errors.New(errors.ErrCodeInvalidInput, "same_language must be true or false")
		}
		opts.SameLanguage = b
	}
	if v := q.Get("max_pages"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, false, errors.New(errors.ErrCodeInvalidInput, "max_pages must be a non-negative integer")
		}
		if s.maxPages == 0 || (n > 0 && n < s.maxPages) {
			opts.MaxPages = n
		}
	}
	var save bool
	if v := q.Get("save"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, false, errors.New(errors.ErrCodeInvalidInput, "save must be true or false")
		}
		save = b
	}
	return opts, save, nil
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errNoStore)
		return
	}
	owner, name := chi.URLParam(r, "owner"), chi.URLParam(r, "repo")
	if err := github.ValidateRepoRef(owner, name); err != nil {
		s.writeError(w, r, err)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	snaps, err := s.store.List(r.Context(), owner+"/"+name, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, snaps)
}

func (s *Server) snapshot(r *http.Request, id string) (*store.Snapshot, error) {
	if !store.ValidID(id) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid snapshot id %q", id)
	}
	return s.store.Get(r.Context(), id)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errNoStore)
		return
	}
	snap, err := s.snapshot(r, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errNoStore)
		return
	}
	id := chi.URLParam(r, "id")
	if !store.ValidID(id) {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid snapshot id %q", id))
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// handleDiff compares {id} with ?against, or with the newest snapshot of the
// same repository and package when against is absent.
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errNoStore)
		return
	}
	snap, err := s.snapshot(r, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	against := r.URL.Query().Get("against")
	if against != "" {
		older, err := s.snapshot(r, against)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		render.JSON(w, r, store.Compare(older, snap))
		return
	}

	latest, err := s.store.Latest(r.Context(), snap.Scan.Repository.String(), snap.Scan.Options.PackageID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, store.Compare(snap, latest))
}
