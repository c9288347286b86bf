package docstore

import (
	"time"

	"github.com/google/uuid"
)

// Document is one schemaless record in a named collection. Typed
// entity fields live in Fields as a JSON object; the envelope columns
// (id, isActive, createdBy, timestamps) are common to every entity.
type Document struct {
	ID         uuid.UUID              `json:"id"`
	Collection string                 `json:"-"`
	Fields     map[string]interface{} `json:"-"`
	IsActive   bool                   `json:"isActive"`
	CreatedBy  *uuid.UUID             `json:"createdBy,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// Flatten merges the envelope and the typed fields into one map,
// which is what the API returns as an entity body.
func (d *Document) Flatten() map[string]interface{} {
	out := make(map[string]interface{}, len(d.Fields)+5)
	for k, v := range d.Fields {
		out[k] = v
	}
	out["id"] = d.ID
	out["isActive"] = d.IsActive
	if d.CreatedBy != nil {
		out["createdBy"] = *d.CreatedBy
	}
	out["createdAt"] = d.CreatedAt
	out["updatedAt"] = d.UpdatedAt
	return out
}

// StringField returns a field as a string, "" when absent or not a string.
func (d *Document) StringField(key string) string {
	v, ok := d.Fields[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
