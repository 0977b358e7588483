package http

import (
	"errors"
	"net/http"

	"bizai/internal/api"
	"bizai/internal/catalog"
	"bizai/internal/core"
	"bizai/internal/log"
	"bizai/internal/services"
	"bizai/internal/session"
)

// moduleEntry resolves the {module} path segment against the catalog.
func (s *Server) moduleEntry(r *http.Request) (catalog.Entry, bool) {
	m := core.Module(r.PathValue("module"))
	if !m.IsValid() {
		return catalog.Entry{}, false
	}
	entry, err := s.catalog.Get(m)
	return entry, err == nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(w, r)
	if !s.requireLogin(w, r, sess) {
		return
	}

	d := s.dashboard.Load(r.Context(), s.api.WithToken(sess.Token))
	page := buildDashboard(r.Context(), s.logger, s.catalog, d, s.now())
	page.Nav = s.nav(sess, "")
	s.writePage(w, r, http.StatusOK, "dashboard.html", page)
}

func (s *Server) handleModulePage(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.moduleEntry(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sess := s.currentSession(w, r)
	if !s.requireLogin(w, r, sess) {
		return
	}

	s.writePage(w, r, http.StatusOK, "module.html", modulePage{
		Nav:   s.nav(sess, entry.Slug),
		Panel: buildPanel(r.Context(), s.logger, entry, sess.Views),
	})
}

// handleUpload runs one upload cycle for a module and answers with the
// refreshed panel. Files the upload control would ignore (no file, or a
// dropped file without a .csv name) get 204 and leave the state untouched.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	entry, ok := s.moduleEntry(r)
	if !ok {
		NotFoundError("Unknown module").Write(w)
		return
	}
	ctx := r.Context()
	logger := log.FromContext(ctx).With(log.FieldModule, entry.Slug.String())

	sess := s.currentSession(w, r)
	if !s.requireLogin(w, r, sess) {
		return
	}

	if r.ContentLength > s.cfg.MaxUploadBytes {
		TooLargeError("File too large").Write(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	upload, err := ParseUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, ErrNoFile):
			w.WriteHeader(http.StatusNoContent)
		case errors.As(err, &tooLarge):
			TooLargeError("File too large").Write(w)
		default:
			logger.WarnContext(ctx, "Upload parse failed", log.FieldError, err, log.FieldOperation, log.OpParse)
			BadRequestError("Invalid upload").Write(w)
		}
		return
	}
	defer upload.Close()

	var accepted *core.File
	control := core.UploadControl{OnUpload: func(f core.File) { accepted = &f }}
	if !control.Accept(upload.Source, &upload.File) {
		logger.DebugContext(ctx, "Upload ignored by control rules", log.FieldFileName, upload.File.Name, log.FieldUploadSource, upload.Source)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.sessions.Update(sess.ID, func(cur *session.Session) { services.Begin(&cur.Views, entry.Slug) })

	res := s.uploads.Upload(ctx, s.api.WithToken(sess.Token), entry.Slug, *accepted, upload.Source)
	s.appMetrics.recordUpload(entry.Slug, res.Failed())

	unauthorized := errors.Is(res.Err, api.ErrUnauthorized)
	updated, ok := s.sessions.Update(sess.ID, func(cur *session.Session) {
		res.Apply(&cur.Views)
		if unauthorized {
			cur.SignOut()
		}
	})
	if !ok {
		// the session expired mid-upload; render from the local copy
		updated = sess
		res.Apply(&updated.Views)
	}

	if unauthorized {
		s.redirectToLogin(w, r, entry.Path())
		return
	}

	panel := buildPanel(ctx, s.logger, entry, updated.Views)
	body, err := s.render(ctx, "panel", panel)
	if err != nil {
		InternalServerError("Could not render results").Write(w)
		return
	}
	NewHTMXResponse().
		TriggerUploadSettled(entry.Slug.String(), panel.Phase).
		BodyHTML(string(body)).
		Write(w)
}
