package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

const (
	draftKeyImages             = "images"
	draftKeyEditingIssueNumber = "__editing_issue_number"
	draftKeyEditingIssueTitle  = "__editing_issue_title"
)

// Draft is a locally persisted, not-yet-submitted (or being-edited) report.
//
// On the wire a draft is a flat object: every field id maps to its string value, next to the
// reserved "images", "__editing_issue_number" and "__editing_issue_title" keys.
type Draft struct {
	Values             map[string]string
	Images             []string
	EditingIssueNumber *int
	EditingIssueTitle  string
}

// NewDraft copies values and images into a fresh draft.
func NewDraft(values map[string]string, images []string) Draft {
	d := Draft{Values: make(map[string]string, len(values))}
	for k, v := range values {
		d.Values[k] = v
	}
	if len(images) > 0 {
		d.Images = append([]string(nil), images...)
	}
	return d
}

// IsEditing reports whether the draft is bound to an existing remote issue.
func (d Draft) IsEditing() bool {
	return d.EditingIssueNumber != nil
}

// Value returns the value for a field id, "" when unset.
func (d Draft) Value(id string) string {
	if d.Values == nil {
		return ""
	}
	return d.Values[id]
}

func (d Draft) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(d.Values)+3)
	for k, v := range d.Values {
		if isReservedDraftKey(k) {
			continue
		}
		flat[k] = v
	}
	images := d.Images
	if images == nil {
		images = []string{}
	}
	flat[draftKeyImages] = images
	if d.EditingIssueNumber != nil {
		flat[draftKeyEditingIssueNumber] = *d.EditingIssueNumber
	}
	if d.EditingIssueTitle != "" {
		flat[draftKeyEditingIssueTitle] = d.EditingIssueTitle
	}
	return json.Marshal(flat)
}

// UnmarshalJSON accepts string and number values for fields; anything else (null, bool, nested
// objects) is dropped, matching what the form can actually hold.
func (d *Draft) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("error decoding draft: %w", err)
	}

	out := Draft{Values: make(map[string]string, len(raw))}
	for k, v := range raw {
		switch k {
		case draftKeyImages:
			list, ok := v.([]any)
			if !ok {
				continue
			}
			for _, item := range list {
				if s, ok := item.(string); ok && s != "" {
					out.Images = append(out.Images, s)
				}
			}
		case draftKeyEditingIssueNumber:
			n, ok := v.(json.Number)
			if !ok {
				continue
			}
			i, err := n.Int64()
			if err != nil {
				continue
			}
			num := int(i)
			out.EditingIssueNumber = &num
		case draftKeyEditingIssueTitle:
			if s, ok := v.(string); ok {
				out.EditingIssueTitle = s
			}
		default:
			switch tv := v.(type) {
			case string:
				out.Values[k] = tv
			case json.Number:
				out.Values[k] = tv.String()
			}
		}
	}

	*d = out
	return nil
}

// FieldIDs returns the draft's value keys in sorted order.
func (d Draft) FieldIDs() []string {
	ids := make([]string, 0, len(d.Values))
	for k := range d.Values {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

func isReservedDraftKey(k string) bool {
	return k == draftKeyImages || k == draftKeyEditingIssueNumber || k == draftKeyEditingIssueTitle
}
