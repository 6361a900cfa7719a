package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/classdesk/tenantbroker/pkg/blobstore"
	"github.com/classdesk/tenantbroker/pkg/export"
	"github.com/classdesk/tenantbroker/pkg/policy"
	"github.com/classdesk/tenantbroker/pkg/secretstore"
	"github.com/classdesk/tenantbroker/pkg/storageprofile"
)

// actorHeader carries the authenticated user id, set by the auth proxy
// in front of this service.
const actorHeader = "X-Actor-ID"

func orgIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "org_id"))
}

func actorID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.Header.Get(actorHeader))
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// requireManager checks the actor may change the organization's
// configuration. Absent membership reads as forbidden so the response
// does not reveal whether the organization exists.
func (s *Server) requireManager(r *http.Request, orgID uuid.UUID) error {
	actor, err := actorID(r)
	if err != nil {
		return secretstore.ErrForbidden
	}
	role, err := s.cp.MemberRole(r.Context(), orgID, actor)
	if err != nil {
		return err
	}
	if !role.CanManageCredentials() {
		return secretstore.ErrForbidden
	}
	return nil
}

// storageState loads the organization's profile and derives its
// lifecycle state.
func (s *Server) storageState(r *http.Request, orgID uuid.UUID) (*storageprofile.Profile, policy.State, error) {
	settings, err := s.cp.GetSettings(r.Context(), orgID)
	if err != nil {
		return nil, "", err
	}
	level := policy.ParseAccessLevel(settings.StorageAccessLevel())
	state, err := policy.Evaluate(settings.StorageProfile, level)
	if err != nil {
		return nil, "", err
	}
	return settings.StorageProfile, state, nil
}

// openStore authorizes op and builds a driver from the decrypted
// profile. The decrypted profile lives only for this request.
func (s *Server) openStore(r *http.Request, orgID uuid.UUID, op policy.Operation) (blobstore.Store, error) {
	profile, state, err := s.storageState(r, orgID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(op, state); err != nil {
		return nil, err
	}
	opened, err := s.keys.OpenProfile(profile)
	if err != nil {
		return nil, err
	}
	return s.newStore(opened, s.sys)
}

// redact strips secret material from a profile before it goes on the
// wire. The sealed envelope is opaque but still never leaves the
// broker.
func redact(p *storageprofile.Profile) *storageprofile.Profile {
	out := p.Clone()
	if out != nil && out.BYOS != nil {
		out.BYOS.AccessKeyID = ""
		out.BYOS.SecretAccessKey = ""
		out.BYOS.Credentials = ""
	}
	return out
}

func (s *Server) handleSaveDedicatedKey(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_org_id"})
		return
	}
	actor, err := actorID(r)
	if err != nil {
		s.writeError(w, r, secretstore.ErrForbidden)
		return
	}

	var body struct {
		Key string `json:"key"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_body", Message: err.Error()})
		return
	}

	if err := s.keys.SaveDedicatedKey(r.Context(), orgID, actor, body.Key); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResolveConnection(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_org_id"})
		return
	}

	conn, err := s.conns.Get(r.Context(), orgID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		SupabaseURL string `json:"supabase_url"`
		AnonKey     string `json:"anon_key"`
		Schema      string `json:"schema"`
	}{conn.SupabaseURL, conn.AnonKey, conn.Schema})
}

func (s *Server) handleSaveConnectionSettings(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_org_id"})
		return
	}
	if err := s.requireManager(r, orgID); err != nil {
		s.writeError(w, r, err)
		return
	}

	var body struct {
		SupabaseURL string `json:"supabase_url"`
		AnonKey     string `json:"anon_key"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_body", Message: err.Error()})
		return
	}
	if body.SupabaseURL == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid_request", Message: "supabase_url is required"})
		return
	}

	if err := s.cp.SaveConnectionSettings(r.Context(), orgID, body.SupabaseURL, body.AnonKey); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetStorageProfile(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_org_id"})
		return
	}

	profile, state, err := s.storageState(r, orgID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Profile *storageprofile.Profile `json:"profile"`
		State   policy.State            `json:"state"`
	}{redact(profile), state})
}

func (s *Server) handleSaveStorageProfile(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_org_id"})
		return
	}
	if err := s.requireManager(r, orgID); err != nil {
		s.writeError(w, r, err)
		return
	}
	actor, _ := actorID(r)

	raw := &storageprofile.Profile{}
	if err := decodeBody(r, raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_body", Message: err.Error()})
		return
	}

	profile := storageprofile.Normalize(raw, actor.String())
	if profile == nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:   "invalid_profile",
			Message: "unknown storage mode",
		})
		return
	}

	var vopts []storageprofile.ValidateOption
	if s.allowInsecure {
		vopts = append(vopts, storageprofile.AllowInsecureLocal())
	}
	if res := storageprofile.Validate(profile, vopts...); !res.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:      "invalid_profile",
			Violations: res.Errors,
		})
		return
	}

	sealed, err := s.keys.SealProfile(profile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.cp.SaveStorageProfile(r.Context(), orgID, sealed); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Profile *storageprofile.Profile `json:"profile"`
	}{redact(sealed)})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_org_id"})
		return
	}
	if err := s.requireManager(r, orgID); err != nil {
		s.writeError(w, r, err)
		return
	}

	var body struct {
		AccessLevel string `json:"access_level,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_body", Message: err.Error()})
			return
		}
	}

	if err := s.cp.SetStorageDisconnected(r.Context(), orgID, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.AccessLevel != "" {
		level := string(policy.ParseAccessLevel(body.AccessLevel))
		if err := s.cp.SetStorageAccessLevel(r.Context(), orgID, level); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	_, state, err := s.storageState(r, orgID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		State policy.State `json:"state"`
	}{state})
}

func (s *Server) handlePresign(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_org_id"})
		return
	}

	var body struct {
		Path        string `json:"path"`
		TTLSeconds  int    `json:"ttl_seconds,omitempty"`
		Filename    string `json:"filename,omitempty"`
		Disposition string `json:"disposition,omitempty"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_body", Message: err.Error()})
		return
	}
	if body.Path == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid_request", Message: "path is required"})
		return
	}

	store, err := s.openStore(r, orgID, policy.OpPresign)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ttl := time.Duration(body.TTLSeconds) * time.Second
	opts := []blobstore.URLOption{blobstore.WithTTL(ttl)}
	switch body.Disposition {
	case "inline":
		opts = append(opts, blobstore.WithInline(body.Filename))
	case "", "attachment":
		if body.Filename != "" {
			opts = append(opts, blobstore.WithDownload(body.Filename))
		}
	default:
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid_request", Message: "disposition must be inline or attachment"})
		return
	}

	url, err := store.PresignedURL(r.Context(), body.Path, opts...)
	observeStorageOp("presign", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ttl <= 0 {
		ttl = blobstore.DefaultURLTTL
	}
	writeJSON(w, http.StatusOK, struct {
		URL       string `json:"url"`
		ExpiresIn int    `json:"expires_in"`
	}{url, int(ttl.Seconds())})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_org_id"})
		return
	}

	var body struct {
		Paths      []string `json:"paths"`
		TTLSeconds int      `json:"ttl_seconds,omitempty"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_body", Message: err.Error()})
		return
	}
	if len(body.Paths) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid_request", Message: "paths is required"})
		return
	}

	store, err := s.openStore(r, orgID, policy.OpExport)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ttl := time.Duration(body.TTLSeconds) * time.Second
	urls := make(map[string]string, len(body.Paths))
	var mu sync.Mutex

	results, err := export.Run(r.Context(), body.Paths, func(ctx context.Context, path string) error {
		url, perr := store.PresignedURL(ctx, path, blobstore.WithTTL(ttl))
		if perr != nil {
			return perr
		}
		mu.Lock()
		urls[path] = url
		mu.Unlock()
		return nil
	})
	observeStorageOp("export", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	type exportItem struct {
		Path  string `json:"path"`
		URL   string `json:"url,omitempty"`
		Error string `json:"error,omitempty"`
	}
	items := make([]exportItem, 0, len(results))
	for _, res := range results {
		item := exportItem{Path: res.Item, URL: urls[res.Item]}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, struct {
		Items  []exportItem `json:"items"`
		Failed int          `json:"failed"`
	}{items, len(export.Failed(results))})
}

func (s *Server) handlePutObject(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_org_id"})
		return
	}
	path := chi.URLParam(r, "*")
	if path == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid_request", Message: "object path is required"})
		return
	}

	store, err := s.openStore(r, orgID, policy.OpPut)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = blobstore.DefaultContentType
	}
	info, err := store.Put(r.Context(), path, r.Body, r.ContentLength, contentType)
	observeStorageOp("put", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := struct {
		Path        string `json:"path"`
		ContentType string `json:"content_type"`
		Size        int64  `json:"size"`
		URL         string `json:"url,omitempty"`
	}{Path: info.Path, ContentType: info.ContentType, Size: info.Size}
	if url, uerr := store.PublicURL(path); uerr == nil {
		resp.URL = url
	} else if !errors.Is(uerr, blobstore.ErrNoPublicURL) {
		s.writeError(w, r, uerr)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDeleteObject(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_org_id"})
		return
	}
	path := chi.URLParam(r, "*")

	store, err := s.openStore(r, orgID, policy.OpDelete)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	err = store.Delete(r.Context(), path)
	observeStorageOp("delete", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
