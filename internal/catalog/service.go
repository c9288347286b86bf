package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medinfo-backend/internal/docstore"
	"medinfo-backend/pkg/cache"
	"medinfo-backend/pkg/logger"
)

// ObjectStore is what the lifecycle service needs from the binary
// asset backend. Uploads return the public URL of the stored object.
type ObjectStore interface {
	UploadImage(ctx context.Context, data []byte, folder string) (string, error)
	UploadFile(ctx context.Context, data []byte, originalName, folder string) (string, error)
	Delete(ctx context.Context, assetURL string) error
}

// DeferredDeleter hands an asset URL to the background worker when an
// inline delete fails. Best-effort; a nil enqueuer just logs.
type DeferredDeleter interface {
	EnqueueAssetDelete(ctx context.Context, assetURL string) error
}

// FileUpload is one multipart file bound to an asset slot.
type FileUpload struct {
	Data     []byte
	Filename string
}

// ListOptions shapes the read-side queries.
type ListOptions struct {
	Category string // discriminator value; empty = all
	Page     int    // 1-based; 0 = no paging
	Limit    int
}

// Option is the id + display-name projection for picker endpoints.
type Option struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

const listCacheTTL = 5 * time.Minute

// Service is the entity lifecycle manager: one generic implementation,
// instantiated per entity type with its schema descriptor. It is the
// error boundary for every catalog operation.
type Service struct {
	schema   Schema
	store    docstore.Store
	objects  ObjectStore
	cache    cache.Cache     // optional
	deferred DeferredDeleter // optional
}

func NewService(schema Schema, store docstore.Store, objects ObjectStore, c cache.Cache, deferred DeferredDeleter) *Service {
	return &Service{
		schema:   schema,
		store:    store,
		objects:  objects,
		cache:    c,
		deferred: deferred,
	}
}

func (s *Service) Schema() Schema {
	return s.schema
}

// ========================================
// CREATE
// ========================================

// Create validates input, uploads any provided assets, then persists
// the document. The ordering is the consistency mechanism: a failed
// upload aborts before any document write, so no document ever points
// at a missing asset.
func (s *Service) Create(ctx context.Context, input map[string]interface{}, files map[string]FileUpload, actor *uuid.UUID) (*docstore.Document, error) {
	if err := s.validateRequired(input); err != nil {
		return nil, err
	}
	if err := s.validateRefs(input); err != nil {
		return nil, err
	}

	// Singleton policies: About rejects a duplicate, Hero turns the
	// create into an update of the existing document.
	if s.schema.Singleton != SingletonNone {
		existing, err := s.store.FindOne(ctx, s.schema.Collection, nil)
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("lookup singleton %s: %w", s.schema.Name, err)
		}
		if existing != nil {
			if s.schema.Singleton == RejectIfExists {
				return nil, NewConflict(s.schema.Name)
			}
			return s.update(ctx, existing, input, files)
		}
	}

	uploaded, err := s.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}

	fields := s.pickFields(input)
	for field, url := range uploaded {
		fields[field] = url
	}

	doc := &docstore.Document{
		Collection: s.schema.Collection,
		Fields:     fields,
		IsActive:   activeFlag(input),
		CreatedBy:  actor,
	}

	created, err := s.store.Create(ctx, doc)
	if err != nil {
		// The document never landed; release what this call uploaded
		// so the bucket does not accumulate unreferenced objects.
		s.releaseAssets(ctx, mapValues(uploaded))
		return nil, fmt.Errorf("create %s: %w", s.schema.Name, err)
	}

	s.invalidateListCache(ctx)
	return created, nil
}

// ========================================
// UPDATE
// ========================================

// Update applies partial field replacement. Asset slots follow the
// swap-then-delete-old contract: the new object is uploaded first and
// the previous one is deleted only after the upload succeeds, so a
// failed upload leaves both the document and its current asset intact.
func (s *Service) Update(ctx context.Context, id string, input map[string]interface{}, files map[string]FileUpload) (*docstore.Document, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, NewInvalidID(s.schema.Name)
	}

	doc, err := s.store.FindByID(ctx, s.schema.Collection, docID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, NewNotFound(s.schema.Name)
		}
		return nil, fmt.Errorf("find %s: %w", s.schema.Name, err)
	}

	if err := s.validateRefs(input); err != nil {
		return nil, err
	}

	return s.update(ctx, doc, input, files)
}

func (s *Service) update(ctx context.Context, doc *docstore.Document, input map[string]interface{}, files map[string]FileUpload) (*docstore.Document, error) {
	fields := s.pickFields(input)

	// Upload every replacement asset before touching the old ones.
	uploaded, err := s.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}

	for field, newURL := range uploaded {
		if oldURL := doc.StringField(field); oldURL != "" {
			s.releaseAssets(ctx, []string{oldURL})
		}
		fields[field] = newURL
	}

	updated, err := s.store.UpdateByID(ctx, s.schema.Collection, doc.ID, fields, activePtr(input))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, NewNotFound(s.schema.Name)
		}
		return nil, fmt.Errorf("update %s: %w", s.schema.Name, err)
	}

	s.invalidateListCache(ctx)
	return updated, nil
}

// ========================================
// DELETE
// ========================================

// Delete releases every stored asset, then removes the document.
// Asset deletion is best-effort: a failed object delete is logged and
// handed to the background worker, and the document is removed
// regardless. A possibly orphaned remote object is the accepted trade
// for never leaving an undeletable document.
func (s *Service) Delete(ctx context.Context, id string) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return NewInvalidID(s.schema.Name)
	}

	doc, err := s.store.FindByID(ctx, s.schema.Collection, docID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return NewNotFound(s.schema.Name)
		}
		return fmt.Errorf("find %s: %w", s.schema.Name, err)
	}

	var urls []string
	for _, slot := range s.schema.AssetSlots {
		if url := doc.StringField(slot.Field); url != "" {
			urls = append(urls, url)
		}
	}
	s.releaseAssets(ctx, urls)

	if err := s.store.DeleteByID(ctx, s.schema.Collection, docID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return NewNotFound(s.schema.Name)
		}
		return fmt.Errorf("delete %s: %w", s.schema.Name, err)
	}

	s.invalidateListCache(ctx)
	return nil
}

// ========================================
// READS
// ========================================

// GetByID returns one document, expanding reference fields when the
// schema declares populate.
func (s *Service) GetByID(ctx context.Context, id string) (map[string]interface{}, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, NewInvalidID(s.schema.Name)
	}

	doc, err := s.store.FindByID(ctx, s.schema.Collection, docID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, NewNotFound(s.schema.Name)
		}
		return nil, fmt.Errorf("find %s: %w", s.schema.Name, err)
	}

	return s.render(ctx, doc), nil
}

// List returns documents newest first, optionally filtered by the
// discriminator field and paginated with skip = (page-1)*limit.
// An empty result is a success, not a 404.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]map[string]interface{}, error) {
	cacheable := opts.Category == "" && opts.Page == 0 && opts.Limit == 0
	cacheKey := fmt.Sprintf("catalog:%s:getAll", s.schema.Collection)

	if cacheable && s.cache != nil {
		var cached []map[string]interface{}
		if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}

	q := docstore.Query{SortNewest: true}
	if opts.Category != "" {
		if s.schema.DiscriminatorField == "" {
			return nil, NewValidation(fmt.Sprintf("%s has no category filter", s.schema.Name))
		}
		q.Filter = map[string]string{s.schema.DiscriminatorField: opts.Category}
	}
	if opts.Limit > 0 {
		q.Limit = opts.Limit
		if opts.Page > 1 {
			q.Skip = (opts.Page - 1) * opts.Limit
		}
	}

	docs, err := s.store.Find(ctx, s.schema.Collection, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.schema.Name, err)
	}

	out := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		out = append(out, s.render(ctx, doc))
	}

	if cacheable && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, out, listCacheTTL); err != nil {
			logger.Warn("list cache set failed", map[string]interface{}{
				"collection": s.schema.Collection, "error": err.Error(),
			})
		}
	}
	return out, nil
}

// Limited returns the capped home-page list for entities that declare one.
func (s *Service) Limited(ctx context.Context) ([]map[string]interface{}, error) {
	return s.List(ctx, ListOptions{Page: 1, Limit: s.schema.LimitedDefault})
}

// Options returns the id + display-name projection for pickers.
func (s *Service) Options(ctx context.Context) ([]Option, error) {
	docs, err := s.store.Find(ctx, s.schema.Collection, docstore.Query{SortNewest: true})
	if err != nil {
		return nil, fmt.Errorf("options %s: %w", s.schema.Name, err)
	}

	display := s.schema.DisplayField()
	opts := make([]Option, 0, len(docs))
	for _, doc := range docs {
		opts = append(opts, Option{ID: doc.ID, Name: doc.StringField(display)})
	}
	return opts, nil
}

// ========================================
// INTERNAL HELPERS
// ========================================

func (s *Service) validateRequired(input map[string]interface{}) error {
	for _, field := range s.schema.RequiredFields {
		if err := requirePresent(input, field); err != nil {
			return err
		}
	}
	// Required reference fields are checked here too; ref syntax is
	// validated separately once presence is established.
	for _, ref := range s.schema.RefFields {
		if !ref.Required {
			continue
		}
		if err := requirePresent(input, ref.Field); err != nil {
			return err
		}
	}
	return nil
}

func requirePresent(input map[string]interface{}, field string) error {
	v, ok := input[field]
	if !ok || v == nil {
		return NewMissingField(field)
	}
	if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
		return NewMissingField(field)
	}
	return nil
}

// validateRefs checks identifier syntax on every reference field
// present in the input. Existence in the referenced collection is not
// pre-checked.
func (s *Service) validateRefs(input map[string]interface{}) error {
	for _, ref := range s.schema.RefFields {
		v, ok := input[ref.Field]
		if !ok || v == nil {
			continue
		}

		if ref.Many {
			ids := stringList(v)
			if ids == nil {
				return NewInvalidID(ref.Label)
			}
			for _, id := range ids {
				if _, err := uuid.Parse(id); err != nil {
					return NewInvalidID(ref.Label)
				}
			}
			continue
		}

		id, ok := v.(string)
		if !ok {
			return NewInvalidID(ref.Label)
		}
		if _, err := uuid.Parse(id); err != nil {
			return NewInvalidID(ref.Label)
		}
	}
	return nil
}

// uploadAll pushes every provided file to its declared asset slot.
// On failure the whole batch is rolled back best-effort and an
// UploadError is returned; the caller must not have written anything yet.
func (s *Service) uploadAll(ctx context.Context, files map[string]FileUpload) (map[string]string, error) {
	uploaded := make(map[string]string)
	for field, file := range files {
		slot, ok := s.schema.assetSlot(field)
		if !ok {
			continue // unexpected file part, ignored
		}

		var url string
		var err error
		switch slot.Kind {
		case AssetFile:
			url, err = s.objects.UploadFile(ctx, file.Data, file.Filename, slot.Folder)
		default:
			url, err = s.objects.UploadImage(ctx, file.Data, slot.Folder)
		}
		if err != nil {
			s.releaseAssets(ctx, mapValues(uploaded))
			return nil, NewUpload(field, err)
		}
		uploaded[field] = url
	}
	return uploaded, nil
}

// releaseAssets deletes objects best-effort. Failures are logged and
// queued for the background worker; they never fail the caller.
func (s *Service) releaseAssets(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.objects.Delete(ctx, url); err != nil {
			logger.Warn("asset delete failed, deferring", map[string]interface{}{
				"collection": s.schema.Collection,
				"url":        url,
				"error":      err.Error(),
			})
			if s.deferred != nil {
				if qErr := s.deferred.EnqueueAssetDelete(ctx, url); qErr != nil {
					logger.Error("failed to defer asset delete", qErr)
				}
			}
		}
	}
}

// pickFields whitelists writable fields from input. Envelope fields
// and undeclared keys are dropped; createdBy can never be overwritten.
func (s *Service) pickFields(input map[string]interface{}) map[string]interface{} {
	allowed := s.schema.allowedFields()
	fields := make(map[string]interface{})
	for k, v := range input {
		if allowed[k] {
			fields[k] = v
		}
	}
	return fields
}

func (s *Service) render(ctx context.Context, doc *docstore.Document) map[string]interface{} {
	out := doc.Flatten()
	if !s.schema.PopulateRefs {
		return out
	}

	for _, ref := range s.schema.RefFields {
		v, ok := doc.Fields[ref.Field]
		if !ok || v == nil {
			continue
		}

		if ref.Many {
			ids := stringList(v)
			populated := make([]map[string]interface{}, 0, len(ids))
			for _, id := range ids {
				if refDoc := s.lookupRef(ctx, ref.Collection, id); refDoc != nil {
					populated = append(populated, refDoc)
				}
			}
			out[ref.Field] = populated
			continue
		}

		id, _ := v.(string)
		if refDoc := s.lookupRef(ctx, ref.Collection, id); refDoc != nil {
			out[ref.Field] = refDoc
		}
	}
	return out
}

// lookupRef projects a referenced document to id + display name.
// A dangling reference renders as nil rather than failing the read.
func (s *Service) lookupRef(ctx context.Context, collection, id string) map[string]interface{} {
	refID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	doc, err := s.store.FindByID(ctx, collection, refID)
	if err != nil {
		return nil
	}

	name := doc.StringField("name")
	if name == "" {
		name = doc.StringField("title")
	}
	return map[string]interface{}{"id": doc.ID, "name": name}
}

func (s *Service) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, fmt.Sprintf("catalog:%s:*", s.schema.Collection)); err != nil {
		logger.Warn("list cache invalidation failed", map[string]interface{}{
			"collection": s.schema.Collection, "error": err.Error(),
		})
	}
}

func activeFlag(input map[string]interface{}) bool {
	if v, ok := input["isActive"]; ok {
		if b, isBool := v.(bool); isBool {
			return b
		}
	}
	return true
}

func activePtr(input map[string]interface{}) *bool {
	if v, ok := input["isActive"]; ok {
		if b, isBool := v.(bool); isBool {
			return &b
		}
	}
	return nil
}

// stringList normalizes a list field value: []string straight from the
// form decoder, []interface{} after a JSONB round trip.
func stringList(v interface{}) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, raw := range t {
			if s, ok := raw.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func mapValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
