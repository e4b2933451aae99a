package supabase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/matzehuels/moduletree/pkg/catalog"
)

// progressRow is a user_progress row. completed_exercises is a JSON array
// whose elements may be strings, numbers or objects.
type progressRow struct {
	ModuleID           string            `json:"module_id"`
	CompletedExercises []json.RawMessage `json:"completed_exercises"`
	LastPosition       *int              `json:"last_position"`
	CompletedAt        *string           `json:"completed_at"`
	StartedAt          *string           `json:"started_at"`
}

func (r progressRow) progress() (catalog.Progress, error) {
	p := catalog.Progress{ModuleID: r.ModuleID}
	if r.LastPosition != nil {
		p.LastPosition = *r.LastPosition
	}
	for _, e := range r.CompletedExercises {
		var s string
		if err := json.Unmarshal(e, &s); err == nil {
			p.CompletedExercises = append(p.CompletedExercises, s)
			continue
		}
		p.CompletedExercises = append(p.CompletedExercises, string(bytes.TrimSpace(e)))
	}
	var err error
	if p.CompletedAt, err = parseTimestamp(r.CompletedAt); err != nil {
		return p, err
	}
	if p.StartedAt, err = parseTimestamp(r.StartedAt); err != nil {
		return p, err
	}
	return p, nil
}

// Postgres timestamps arrive with or without a zone depending on the
// column type.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid timestamp %q", *s)
}

// decodeSubscription accepts null, an object, or a set-returning RPC's
// array of rows.
func decodeSubscription(raw json.RawMessage) (*catalog.Subscription, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var row map[string]any
	if raw[0] == '[' {
		var rows []map[string]any
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		if len(rows) == 0 {
			return nil, nil
		}
		row = rows[0]
	} else if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}
	if row == nil {
		return nil, nil
	}

	sub := &catalog.Subscription{Extra: map[string]any{}}
	for k, v := range row {
		switch k {
		case "id", "subscription_id":
			sub.ID = stringify(v)
		case "plan", "plan_type", "plan_name":
			sub.Plan = stringify(v)
		case "expires_at", "ends_at", "current_period_end":
			if s, ok := v.(string); ok {
				t, err := parseTimestamp(&s)
				if err != nil {
					return nil, err
				}
				sub.ExpiresAt = t
			}
		default:
			sub.Extra[k] = v
		}
	}
	if len(sub.Extra) == 0 {
		sub.Extra = nil
	}
	return sub, nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
