package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/raywall/upstream-simulators/pkg/metrics"
	"github.com/raywall/upstream-simulators/pkg/simulator"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"

	shutdownTimeout = 5 * time.Second
)

// Server agrupa os endpoints servidos em uma porta.
type Server struct {
	Name      string
	Port      int
	Endpoints []*simulator.Endpoint
}

// NewRouter registra cada endpoint na rota/método configurados (gorilla/mux resolve
// as variáveis de path como {companyId}).
func NewRouter(endpoints []*simulator.Endpoint, rec *metrics.Recorder) *mux.Router {
	router := mux.NewRouter()
	for _, ep := range endpoints {
		router.HandleFunc(ep.Path, NewHandler(ep, rec)).Methods(ep.Method).Name(ep.Name)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendError(w, &simulator.Error{Kind: simulator.NotFound, Description: "Route not found."})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendJSON(w, http.StatusMethodNotAllowed, []byte(`{"status":405,"description":"Method not allowed."}`))
	})
	return router
}

// NewHandler adapta um Endpoint para net/http.
func NewHandler(ep *simulator.Endpoint, rec *metrics.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		req := ExtractRequest(ep, mux.Vars(r), r.URL.Query())
		resp := ep.Handle(r.Context(), req)

		sendJSON(w, resp.Status, resp.Payload())

		if err := rec.Record(ep.Name, string(resp.Outcome), resp.Status, time.Since(start)); err != nil {
			log.Ctx(r.Context()).Debug().Err(err).Msg("falha ao registrar métricas")
		}
	}
}

// ExtractRequest copia apenas os parâmetros declarados pelo endpoint. Parâmetros de
// query são considerados presentes mesmo com valor vazio.
func ExtractRequest(ep *simulator.Endpoint, vars map[string]string, query map[string][]string) simulator.Request {
	params := make(map[string]string)
	for _, p := range ep.Params {
		switch p.In {
		case "path":
			if value, ok := vars[p.Name]; ok {
				params[p.Name] = value
			}
		default:
			if values, ok := query[p.Name]; ok {
				value := ""
				if len(values) > 0 {
					value = values[0] // Pega o primeiro valor
				}
				params[p.Name] = value
			}
		}
	}
	return simulator.NewRequest(params)
}

// StartHTTPServers sobe um listener por servidor e bloqueia até o contexto ser
// cancelado (shutdown gracioso) ou algum listener falhar.
func StartHTTPServers(ctx context.Context, servers []Server, rec *metrics.Recorder) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		srv := srv
		httpServer := &http.Server{
			Addr:              fmt.Sprintf(":%d", srv.Port),
			Handler:           ObservabilityMiddleware(NewRouter(srv.Endpoints, rec.With("server:"+srv.Name))),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			log.Info().Str("server", srv.Name).Msgf("Simulador ouvindo em %s", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("servidor %s (porta %d): %w", srv.Name, srv.Port, err)
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func sendJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			log.Error().Err(err).Msg("Erro ao escrever resposta")
		}
	}
}

func sendError(w http.ResponseWriter, err *simulator.Error) {
	sendJSON(w, err.Status(), simulator.Response{Err: err}.Payload())
}

// --- MIDDLEWARE DE OBSERVABILIDADE ---
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	duration := time.Since(rw.startTime)
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", duration.Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// ObservabilityMiddleware propaga o correlation ID e registra uma linha por request.
func ObservabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		corrID := r.Header.Get(HeaderCorrelationID)
		if corrID == "" {
			corrID = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, corrID)

		logger := log.With().Str("correlation_id", corrID).Logger()
		ctx := logger.WithContext(r.Context())

		wrapper := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			startTime:      start,
		}

		next.ServeHTTP(wrapper, r.WithContext(ctx))

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Msg("request completed")
	})
}
