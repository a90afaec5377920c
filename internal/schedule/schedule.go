// Package schedule loads a conference schedule export and flattens it into
// one list of talks.
package schedule

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultURL is the schedule export the tools were first built against.
const DefaultURL = "https://talks.nixcon.org/nixcon-2024/schedule/export/schedule.json"

// ErrStatus is returned for non-2xx responses.
var ErrStatus = errors.New("unexpected schedule response status")

// Talk is one scheduled talk. Metadata holds the record as exported.
type Talk struct {
	Room     string
	Time     string
	Metadata map[string]any
}

// ID returns the talk id as a string, preferring "id" over "guid".
func (t Talk) ID() string {
	switch v := t.Metadata["id"].(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case json.Number:
		return v.String()
	case string:
		return v
	}
	if guid, ok := t.Metadata["guid"].(string); ok {
		return guid
	}
	return ""
}

func (t Talk) Title() string {
	s, _ := t.Metadata["title"].(string)
	return s
}

// Persons lists the presenter names, public names first.
func (t Talk) Persons() []string {
	list, _ := t.Metadata["persons"].([]any)
	var out []string
	for _, p := range list {
		m, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range []string{"public_name", "name"} {
			if name, ok := m[key].(string); ok && name != "" {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// Person joins Persons the way the intro slide expects them.
func (t Talk) Person() string {
	return strings.Join(t.Persons(), ",")
}

type document struct {
	Schedule struct {
		Conference struct {
			Days []struct {
				Rooms map[string]json.RawMessage `json:"rooms"`
			} `json:"days"`
		} `json:"conference"`
	} `json:"schedule"`
}

// Load fetches url and flattens every room of every day into one list. Rooms
// of a day are visited in name order.
func Load(ctx context.Context, client *http.Client, url string) ([]Talk, error) {
	raw, err := fetch(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func fetch(ctx context.Context, client *http.Client, url string) (json.RawMessage, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build schedule request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch schedule %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrap(ErrStatus, resp.Status)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode schedule")
	}
	return raw, nil
}

// Parse flattens an already fetched schedule document.
func Parse(data []byte) ([]Talk, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode schedule")
	}
	return flatten(doc)
}

func flatten(doc document) ([]Talk, error) {
	var talks []Talk
	for _, day := range doc.Schedule.Conference.Days {
		names := make([]string, 0, len(day.Rooms))
		for name := range day.Rooms {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			records, err := decodeRoom(day.Rooms[name])
			if err != nil {
				return nil, errors.Wrapf(err, "room %q", name)
			}
			for _, rec := range records {
				talks = append(talks, newTalk(name, rec))
			}
		}
	}
	return talks, nil
}

// decodeRoom accepts both a list of talks and a single talk record.
func decodeRoom(raw json.RawMessage) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case trimmed == "" || trimmed == "null":
		return nil, nil
	case strings.HasPrefix(trimmed, "["):
		var list []map[string]any
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	default:
		var one map[string]any
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, err
		}
		return []map[string]any{one}, nil
	}
}

func newTalk(room string, rec map[string]any) Talk {
	t := Talk{Room: room, Metadata: rec}
	for _, key := range []string{"date", "start"} {
		if s, ok := rec[key].(string); ok && s != "" {
			t.Time = s
			break
		}
	}
	return t
}

// Find returns the talk with the given id.
func Find(talks []Talk, id string) (Talk, bool) {
	for _, t := range talks {
		if t.ID() == id {
			return t, true
		}
	}
	return Talk{}, false
}
