// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iedi-workers/internal/analysis"
	"iedi-workers/internal/backend"
	"iedi-workers/internal/cache"
	"iedi-workers/internal/common/camunda"
	"iedi-workers/internal/common/config"
	"iedi-workers/internal/common/errors"
	"iedi-workers/internal/common/logger"

	cas "iedi-workers/internal/workers/analysis/check-analysis-status"
	ca "iedi-workers/internal/workers/analysis/create-analysis"
	da "iedi-workers/internal/workers/analysis/delete-analysis"
	fbr "iedi-workers/internal/workers/analysis/fetch-bank-results"
	na "iedi-workers/internal/workers/communication/notify-analysis"
)

// ==========================
// Fake IEDI backend
// ==========================

type fakeBackend struct {
	mu        sync.Mutex
	seq       int
	analyses  map[string]*backend.Analysis
	results   map[string][]backend.BankAnalysis
	bankCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		analyses: make(map[string]*backend.Analysis),
		results:  make(map[string][]backend.BankAnalysis),
	}
}

func (f *fakeBackend) router() http.Handler {
	r := chi.NewRouter()

	r.Get("/api/banks", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		f.bankCalls++
		f.mu.Unlock()
		render.JSON(w, req, map[string]interface{}{"banks": []analysis.Bank{
			{Name: "BANCO_DO_BRASIL", DisplayName: "Banco do Brasil"},
			{Name: "BRADESCO"},
			{Name: "ITAU", DisplayName: "Itaú"},
			{Name: "SANTANDER"},
		}})
	})

	r.Post("/api/analyses", func(w http.ResponseWriter, req *http.Request) {
		var body analysis.AnalysisRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			render.Status(req, http.StatusBadRequest)
			render.JSON(w, req, map[string]string{"error": err.Error()})
			return
		}

		f.mu.Lock()
		f.seq++
		a := &backend.Analysis{
			ID:            fmt.Sprintf("a-%d", f.seq),
			Name:          body.Name,
			QueryName:     body.Query,
			Status:        "pending",
			IsCustomDates: len(body.CustomBankDates) > 0,
		}
		f.analyses[a.ID] = a
		f.mu.Unlock()

		render.Status(req, http.StatusCreated)
		render.JSON(w, req, map[string]interface{}{"message": "Análise criada", "analysis": a})
	})

	r.Route("/api/analyses/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			a, ok := f.find(chi.URLParam(req, "id"))
			if !ok {
				notFound(w, req)
				return
			}
			render.JSON(w, req, map[string]interface{}{"analysis": a})
		})
		r.Get("/banks", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			if _, ok := f.find(id); !ok {
				notFound(w, req)
				return
			}
			f.mu.Lock()
			rows := f.results[id]
			f.mu.Unlock()
			render.JSON(w, req, map[string]interface{}{"bank_analyses": rows})
		})
		r.Delete("/", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			f.mu.Lock()
			_, ok := f.analyses[id]
			delete(f.analyses, id)
			delete(f.results, id)
			f.mu.Unlock()
			if !ok {
				notFound(w, req)
				return
			}
			render.JSON(w, req, map[string]string{"message": "Análise removida"})
		})
	})

	return r
}

func (f *fakeBackend) find(id string) (backend.Analysis, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.analyses[id]
	if !ok {
		return backend.Analysis{}, false
	}
	return *a, true
}

// complete plays the backend's processing step.
func (f *fakeBackend) complete(id string, rows []backend.BankAnalysis) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyses[id].Status = "completed"
	f.results[id] = rows
}

func notFound(w http.ResponseWriter, req *http.Request) {
	render.Status(req, http.StatusNotFound)
	render.JSON(w, req, map[string]string{"error": "Análise não encontrada"})
}

type capturingPublisher struct {
	subject    string
	message    string
	attributes map[string]string
}

func (p *capturingPublisher) PublishMessage(_ context.Context, _, subject, message string, attributes map[string]string) (string, error) {
	p.subject, p.message, p.attributes = subject, message, attributes
	return "msg-1", nil
}

func score(v float64) *float64 { return &v }

// ==========================
// Pipeline
// ==========================

func TestAnalysisPipeline(t *testing.T) {
	ctx := context.Background()
	log := logger.NewTestLogger(t)

	fake := newFakeBackend()
	srv := httptest.NewServer(fake.router())
	defer srv.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	api := backend.New(backend.Options{BaseURL: srv.URL, Timeout: 5 * time.Second, Logger: log})
	catalog := cache.NewBankCatalog(api, rdb, time.Minute, log)

	create, err := ca.NewHandler(ca.HandlerOptions{
		Dependencies: ca.ServiceDependencies{Backend: api, Banks: catalog, Builder: analysis.NewBuilder(nil)},
		Logger:       log,
	})
	require.NoError(t, err)
	status, err := cas.NewHandler(cas.HandlerOptions{Dependencies: cas.ServiceDependencies{Backend: api}, Logger: log})
	require.NoError(t, err)
	results, err := fbr.NewHandler(fbr.HandlerOptions{Dependencies: fbr.ServiceDependencies{Backend: api}, Logger: log})
	require.NoError(t, err)
	remove, err := da.NewHandler(da.HandlerOptions{Dependencies: da.ServiceDependencies{Backend: api}, Logger: log})
	require.NoError(t, err)

	publisher := &capturingPublisher{}
	notify, err := na.NewHandler(na.HandlerOptions{
		CustomConfig: &na.Config{
			Enabled:       true,
			MaxJobsActive: 1,
			Timeout:       5 * time.Second,
			Channel:       config.ChannelSNS,
			TopicARN:      "arn:aws:sns:us-east-1:123456789012:iedi",
		},
		Dependencies: na.ServiceDependencies{Publisher: publisher},
		Logger:       log,
	})
	require.NoError(t, err)

	// 1. Create through the builder, the cached bank check and the backend.
	created, err := create.Execute(ctx, &ca.Input{
		Name:      "  Q1 2024 ",
		Query:     "Bancos",
		BankNames: []string{"ITAU", "BRADESCO", "ITAU"},
		StartDate: "2024-01-01T00:00",
		EndDate:   "2024-03-31T23:59",
	})
	require.NoError(t, err)
	assert.Equal(t, "a-1", created.AnalysisID)
	assert.Equal(t, "Q1 2024", created.AnalysisName)
	assert.Equal(t, analysis.StatusPending, created.AnalysisStatus)
	assert.Equal(t, []string{"ITAU", "BRADESCO"}, created.Banks)
	assert.True(t, mr.Exists(cache.BanksKey))

	// A second request is served from the cache and rejected before reaching the backend.
	_, err = create.Execute(ctx, &ca.Input{
		Name:    "Q1",
		Query:   "Bancos",
		Mode:    analysis.ModeCustom,
		Periods: []analysis.PeriodInput{{BankName: "NUBANK", StartDate: "2024-01-01", EndDate: "2024-02-01"}},
	})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUnknownBank, stdErr.Code)
	assert.Equal(t, 1, fake.bankCalls)

	// 2. Poll until the backend finishes.
	st, err := status.Execute(ctx, &cas.Input{AnalysisID: created.AnalysisID})
	require.NoError(t, err)
	assert.False(t, st.Terminal)

	fake.complete(created.AnalysisID, []backend.BankAnalysis{
		{BankName: "BRADESCO", TotalMentions: 80, IEDIScore: score(6.2)},
		{BankName: "ITAU", TotalMentions: 120, IEDIScore: score(7.9)},
	})

	st, err = status.Execute(ctx, &cas.Input{AnalysisID: created.AnalysisID})
	require.NoError(t, err)
	assert.True(t, st.Terminal)
	assert.Equal(t, "Concluída", st.StatusLabel)

	// 3. Fetch ranked results.
	res, err := results.Execute(ctx, &fbr.Input{AnalysisID: created.AnalysisID})
	require.NoError(t, err)
	assert.Equal(t, 2, res.BankCount)
	assert.Equal(t, 200, res.TotalMentions)
	assert.Equal(t, "ITAU", res.TopBank)

	// 4. Notify with the fetched rows.
	rows := make([]na.BankResult, 0, len(res.BankResults))
	for _, r := range res.BankResults {
		rows = append(rows, na.BankResult{BankName: r.BankName, TotalMentions: r.TotalMentions, IEDIScore: r.IEDIScore})
	}
	sent, err := notify.Execute(ctx, &na.Input{
		AnalysisID:     created.AnalysisID,
		AnalysisName:   created.AnalysisName,
		AnalysisStatus: string(st.AnalysisStatus),
		BankResults:    rows,
	})
	require.NoError(t, err)
	assert.True(t, sent.Sent)
	assert.Equal(t, "[IEDI] Q1 2024: Concluída", publisher.subject)
	assert.Contains(t, publisher.message, "ITAU: IEDI 7.90 (120 menções)")
	assert.Equal(t, "COMPLETED", publisher.attributes["status"])

	// 5. Delete twice; the second call is a no-op.
	del, err := remove.Execute(ctx, &da.Input{AnalysisID: created.AnalysisID})
	require.NoError(t, err)
	assert.True(t, del.Deleted)
	assert.False(t, del.AlreadyDeleted)

	del, err = remove.Execute(ctx, &da.Input{AnalysisID: created.AnalysisID})
	require.NoError(t, err)
	assert.True(t, del.AlreadyDeleted)

	_, err = status.Execute(ctx, &cas.Input{AnalysisID: created.AnalysisID})
	stdErr, ok = errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAnalysisNotFound, stdErr.Code)
}

// TestLiveEngine runs only against a real gateway: IEDI_E2E_GATEWAY=localhost:26500.
func TestLiveEngine(t *testing.T) {
	gateway := os.Getenv("IEDI_E2E_GATEWAY")
	if gateway == "" {
		t.Skip("IEDI_E2E_GATEWAY not set")
	}

	client, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
		GatewayAddress:         gateway,
		UsePlaintextConnection: true,
		RequestTimeout:         10 * time.Second,
	})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.HealthCheck(context.Background()))
}
