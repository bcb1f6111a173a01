package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/raywall/upstream-simulators/pkg/metrics"
	"github.com/raywall/upstream-simulators/pkg/simulator"
	"github.com/rs/zerolog/log"
)

// LambdaHandler adapta eventos do API Gateway para os simuladores. Todas as rotas
// configuradas são servidas pela mesma função.
type LambdaHandler struct {
	router    *mux.Router
	endpoints map[*mux.Route]*simulator.Endpoint
	rec       *metrics.Recorder
}

// NewLambdaHandler cria uma nova instância do adaptador
func NewLambdaHandler(endpoints []*simulator.Endpoint, rec *metrics.Recorder) *LambdaHandler {
	h := &LambdaHandler{
		router:    mux.NewRouter(),
		endpoints: make(map[*mux.Route]*simulator.Endpoint),
		rec:       rec,
	}
	// O router é usado apenas para casar path/método e extrair variáveis
	for _, ep := range endpoints {
		route := h.router.NewRoute().Path(ep.Path).Methods(ep.Method)
		h.endpoints[route] = ep
	}
	return h
}

// Handle processa a requisição Lambda
func (h *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	corrID := req.Headers[HeaderCorrelationID]
	if corrID == "" {
		corrID = req.Headers["X-Correlation-Id"]
	}
	if corrID == "" {
		corrID = uuid.NewString()
	}

	logger := log.With().Str("correlation_id", corrID).Logger()
	ctx = logger.WithContext(ctx)

	response := h.dispatch(ctx, req, start)

	logger.Info().
		Str("method", req.HTTPMethod).
		Str("path", req.Path).
		Int("status", response.StatusCode).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("lambda request completed")

	response.Headers[HeaderCorrelationID] = corrID
	return response, nil
}

func (h *LambdaHandler) dispatch(ctx context.Context, req events.APIGatewayProxyRequest, start time.Time) events.APIGatewayProxyResponse {
	httpReq, err := http.NewRequestWithContext(ctx, req.HTTPMethod, req.Path, nil)
	if err != nil {
		return lambdaError(&simulator.Error{Kind: simulator.BadRequest, Description: "Invalid request path."})
	}

	var match mux.RouteMatch
	if !h.router.Match(httpReq, &match) {
		if match.MatchErr == mux.ErrMethodMismatch {
			return lambdaResponse(http.StatusMethodNotAllowed, []byte(`{"status":405,"description":"Method not allowed."}`))
		}
		return lambdaError(&simulator.Error{Kind: simulator.NotFound, Description: "Route not found."})
	}
	ep := h.endpoints[match.Route]

	// Variáveis de path: mux tem prioridade, PathParameters do API Gateway como fallback
	vars := make(map[string]string)
	for k, v := range req.PathParameters {
		vars[k] = v
	}
	for k, v := range match.Vars {
		vars[k] = v
	}

	query := make(map[string][]string)
	for k, v := range req.MultiValueQueryStringParameters {
		query[k] = v
	}
	for k, v := range req.QueryStringParameters {
		if _, ok := query[k]; !ok {
			query[k] = []string{v}
		}
	}

	resp := ep.Handle(ctx, ExtractRequest(ep, vars, query))

	if err := h.rec.Record(ep.Name, string(resp.Outcome), resp.Status, time.Since(start)); err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("falha ao registrar métricas")
	}
	return lambdaResponse(resp.Status, resp.Payload())
}

func lambdaError(err *simulator.Error) events.APIGatewayProxyResponse {
	return lambdaResponse(err.Status(), simulator.Response{Err: err}.Payload())
}

func lambdaResponse(status int, body []byte) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
