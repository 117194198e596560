package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PhrasebankScanner/internal/domain"
	"PhrasebankScanner/internal/usecase"
)

type stubReader struct {
	records    []domain.PhraseRecord
	info       *domain.CorpusInfo
	lastQuery  string
	lastSearch domain.SearchOptions
}

func (s *stubReader) BySection(_ context.Context, section, subsection string) ([]domain.PhraseRecord, error) {
	out := []domain.PhraseRecord{}
	for _, rec := range s.records {
		if rec.Section == section && (subsection == "" || rec.Subsection == subsection) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *stubReader) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.PhraseRecord, error) {
	s.lastQuery, s.lastSearch = query, opts
	out := []domain.PhraseRecord{}
	for _, rec := range s.records {
		if strings.Contains(strings.ToLower(rec.Text), strings.ToLower(query)) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *stubReader) Info(context.Context) (domain.CorpusInfo, error) {
	if s.info == nil {
		return domain.CorpusInfo{}, domain.ErrCorpusNotFound
	}
	return *s.info, nil
}

type listResponse struct {
	Count   int                   `json:"count"`
	Phrases []domain.PhraseRecord `json:"phrases"`
}

func newTestServer(t *testing.T, reader *stubReader) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(usecase.NewLookup(reader), nil))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf strings.Builder
	_, err = io.Copy(&buf, resp.Body)
	require.NoError(t, err)
	return resp, []byte(buf.String())
}

var storedRecords = []domain.PhraseRecord{
	{ID: "results_general_1", Text: "The results are shown in Table 1.", Section: "results", Subsection: "general", AcademicScore: 5, Frequency: domain.FrequencyHigh},
	{ID: "results_highlighting_1", Text: "Interestingly, the data suggest a strong effect.", Section: "results", Subsection: "highlighting", AcademicScore: 6, Frequency: domain.FrequencyHigh},
	{ID: "results_highlighting_2", Text: "It is apparent from this table that very few cases were reported.", Section: "results", Subsection: "highlighting", AcademicScore: 6.5, Frequency: domain.FrequencyMedium},
	{ID: "methods_general_1", Text: "The sample was drawn from the register.", Section: "methods", Subsection: "general", AcademicScore: 6.5, Frequency: domain.FrequencyHigh},
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &stubReader{})

	resp, body := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestSectionRoutes(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &stubReader{records: storedRecords})

	resp, body := get(t, srv, "/api/sections/results")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all listResponse
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Equal(t, 3, all.Count)

	resp, body = get(t, srv, "/api/sections/results/highlighting")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sub listResponse
	require.NoError(t, json.Unmarshal(body, &sub))
	require.Len(t, sub.Phrases, 2)
	assert.Equal(t, "results_highlighting_1", sub.Phrases[0].ID)

	resp, body = get(t, srv, "/api/sections/results/frequent?limit=5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var frequent listResponse
	require.NoError(t, json.Unmarshal(body, &frequent))
	require.Len(t, frequent.Phrases, 2)
	assert.Equal(t, "results_highlighting_1", frequent.Phrases[0].ID)

	resp, _ = get(t, srv, "/api/sections/results/frequent?limit=abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchRoute(t *testing.T) {
	t.Parallel()
	reader := &stubReader{records: storedRecords}
	srv := newTestServer(t, reader)

	resp, body := get(t, srv, "/api/search?q=table&section=results&minScore=5.5&limit=3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found listResponse
	require.NoError(t, json.Unmarshal(body, &found))
	assert.Equal(t, 2, found.Count)
	assert.Equal(t, "table", reader.lastQuery)
	assert.Equal(t, domain.SearchOptions{Section: "results", MinScore: 5.5, Limit: 3}, reader.lastSearch)

	resp, _ = get(t, srv, "/api/search")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, srv, "/api/search?q=%20%20")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, srv, "/api/search?q=table&minScore=high")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInfoRoute(t *testing.T) {
	t.Parallel()

	resp, _ := get(t, newTestServer(t, &stubReader{}), "/api/info")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	info := &domain.CorpusInfo{TotalPhrases: 4, Sections: []string{"methods", "results"}}
	resp, body := get(t, newTestServer(t, &stubReader{info: info}), "/api/info")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var decoded domain.CorpusInfo
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, 4, decoded.TotalPhrases)
	assert.Equal(t, []string{"methods", "results"}, decoded.Sections)
}
