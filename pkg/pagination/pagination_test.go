package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", DefaultLimit, 0},
		{"explicit", "limit=10&offset=40", 10, 40},
		{"limit capped", "limit=500", MaxLimit, 0},
		{"negative offset clamped", "offset=-5", DefaultLimit, 0},
		{"zero limit falls back", "limit=0", DefaultLimit, 0},
		{"junk ignored", "limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := paramsFor(t, tc.query)
			if p.Limit != tc.wantLimit || p.Offset != tc.wantOffset {
				t.Errorf("got %+v, want limit=%d offset=%d", p, tc.wantLimit, tc.wantOffset)
			}
		})
	}
}

func TestNewResponseHasMore(t *testing.T) {
	if r := NewResponse(nil, 50, 20, 0); !r.HasMore {
		t.Error("expected HasMore with 30 rows remaining")
	}
	if r := NewResponse(nil, 50, 20, 40); r.HasMore {
		t.Error("expected HasMore=false on the last page")
	}
	if r := NewResponse(nil, 0, 20, 0); r.HasMore {
		t.Error("expected HasMore=false for empty result")
	}
}
