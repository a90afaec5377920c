package schedule

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

const exportJSON = `{
  "schedule": {
    "conference": {
      "days": [
        {
          "rooms": {
            "Hall B": [
              {"id": 12, "date": "2024-10-25T11:00:00+02:00", "title": "Flakes", "persons": [{"public_name": "Alice"}, {"name": "Bob"}]}
            ],
            "Hall A": [
              {"id": 10, "date": "2024-10-25T10:00:00+02:00", "title": "Opening", "persons": []},
              {"id": 11, "date": "2024-10-25T10:30:00+02:00", "title": "Keynote", "persons": [{"public_name": "Carol"}]}
            ]
          }
        },
        {
          "rooms": {
            "Hall A": {"guid": "abc-def", "start": "09:00", "title": "Day two"},
            "Empty": []
          }
        }
      ]
    }
  }
}`

func TestParseFlattensRoomsAndDays(t *testing.T) {
	talks, err := Parse([]byte(exportJSON))
	if err != nil {
		t.Fatal(err)
	}

	var titles, rooms []string
	for _, talk := range talks {
		titles = append(titles, talk.Title())
		rooms = append(rooms, talk.Room)
	}
	if want := []string{"Opening", "Keynote", "Flakes", "Day two"}; !reflect.DeepEqual(titles, want) {
		t.Errorf("titles %q, want %q", titles, want)
	}
	if want := []string{"Hall A", "Hall A", "Hall B", "Hall A"}; !reflect.DeepEqual(rooms, want) {
		t.Errorf("rooms %q, want %q", rooms, want)
	}

	flakes := talks[2]
	if flakes.ID() != "12" || flakes.Time != "2024-10-25T11:00:00+02:00" {
		t.Errorf("unexpected talk %+v", flakes)
	}
	if got := flakes.Persons(); !reflect.DeepEqual(got, []string{"Alice", "Bob"}) {
		t.Errorf("persons %q", got)
	}
	if flakes.Person() != "Alice,Bob" {
		t.Errorf("person %q", flakes.Person())
	}

	dayTwo := talks[3]
	if dayTwo.ID() != "abc-def" || dayTwo.Time != "09:00" || dayTwo.Persons() != nil {
		t.Errorf("single record not flattened: %+v", dayTwo)
	}

	if got, ok := Find(talks, "11"); !ok || got.Title() != "Keynote" {
		t.Errorf("Find(11) = %+v, %v", got, ok)
	}
	if _, ok := Find(talks, "99"); ok {
		t.Error("Find should miss unknown ids")
	}
}

func TestParseRejectsBadRoom(t *testing.T) {
	doc := `{"schedule":{"conference":{"days":[{"rooms":{"A":"nope"}}]}}}`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Error("expected error for malformed room")
	}
}

func TestLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Write([]byte(exportJSON))
	}))
	defer srv.Close()

	talks, err := Load(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if len(talks) != 4 {
		t.Errorf("expected 4 talks, got %d", len(talks))
	}
}

func TestLoadErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		default:
			w.Write([]byte("{not json"))
		}
	}))
	defer srv.Close()

	if _, err := Load(context.Background(), srv.Client(), srv.URL+"/missing"); !errors.Is(err, ErrStatus) {
		t.Errorf("expected ErrStatus, got %v", err)
	}
	if _, err := Load(context.Background(), srv.Client(), srv.URL+"/broken"); err == nil {
		t.Error("expected decode error")
	}
}

func TestCacheTTL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(exportJSON))
	}))
	defer srv.Close()

	mock := clock.NewMock()
	c := NewCache(srv.URL)
	c.Client = srv.Client()
	c.Clock = mock
	ctx := context.Background()

	steps := []struct {
		advance time.Duration
		force   bool
		hits    int32
	}{
		{0, false, 1},
		{5 * time.Second, false, 1},
		{0, true, 2},
		{15 * time.Second, false, 2},
		{time.Second, false, 3},
	}
	for i, step := range steps {
		mock.Add(step.advance)
		if _, err := c.Raw(ctx, step.force); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got := hits.Load(); got != step.hits {
			t.Errorf("step %d: %d fetches, want %d", i, got, step.hits)
		}
	}

	talks, err := c.Talks(ctx, false)
	if err != nil || len(talks) != 4 {
		t.Errorf("Talks: %d talks, err %v", len(talks), err)
	}
}
