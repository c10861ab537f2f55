package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/crrankyy/research-agent/pkg/domain/model"
	"github.com/crrankyy/research-agent/pkg/domain/types"
	"github.com/crrankyy/research-agent/pkg/usecase"
	"github.com/crrankyy/research-agent/pkg/utils/errutil"
)

type runResponse struct {
	ID           string     `json:"id"`
	Query        string     `json:"query"`
	Status       string     `json:"status"`
	FinalReport  string     `json:"final_report,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Citations    []citation `json:"citations,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Kind  string `json:"kind"`
}

type logEntryResponse struct {
	Seq       int64           `json:"seq"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

type chatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func toRunResponse(run *model.ResearchRun, citations []*model.Citation) runResponse {
	resp := runResponse{
		ID:           run.ID.String(),
		Query:        run.Query,
		Status:       run.Status.String(),
		FinalReport:  run.FinalReport,
		ErrorMessage: run.ErrorMessage,
		CreatedAt:    run.CreatedAt,
		UpdatedAt:    run.UpdatedAt,
	}
	for _, c := range citations {
		resp.Citations = append(resp.Citations, citation{
			Title: c.Title,
			URL:   c.URL,
			Kind:  c.Kind.String(),
		})
	}
	return resp
}

// statusOf maps use case errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrEmptyQuery),
		errors.Is(err, usecase.ErrQueryTooLong),
		errors.Is(err, usecase.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrRunNotCompleted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data) //nolint:errcheck // header already committed
}

func startRunHandler(uc *usecase.ResearchUseCase) http.HandlerFunc {
	type request struct {
		Query string `json:"query"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}

		run, err := uc.Start(r.Context(), userIDFrom(r.Context()), req.Query)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}

		writeJSON(w, r, http.StatusCreated, toRunResponse(run, nil))
	}
}

func listRunsHandler(uc *usecase.ResearchUseCase) http.HandlerFunc {
	type response struct {
		Runs []runResponse `json:"runs"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := uc.List(r.Context(), userIDFrom(r.Context()))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}

		resp := response{Runs: make([]runResponse, len(runs))}
		for i, run := range runs {
			resp.Runs[i] = toRunResponse(run, nil)
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func getRunHandler(uc *usecase.ResearchUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFrom(r.Context())
		runID := types.RunID(chi.URLParam(r, "runID"))

		run, err := uc.Get(r.Context(), userID, runID)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}

		var citations []*model.Citation
		if run.Status == types.RunStatusCompleted {
			if citations, err = uc.Citations(r.Context(), userID, runID); err != nil {
				errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
				return
			}
		}

		writeJSON(w, r, http.StatusOK, toRunResponse(run, citations))
	}
}

func listLogsHandler(uc *usecase.ResearchUseCase) http.HandlerFunc {
	type response struct {
		Logs []logEntryResponse `json:"logs"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := uc.Logs(r.Context(), userIDFrom(r.Context()), types.RunID(chi.URLParam(r, "runID")))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}

		resp := response{Logs: make([]logEntryResponse, len(entries))}
		for i, entry := range entries {
			payload, err := model.EncodePayload(entry.Payload)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
				return
			}
			resp.Logs[i] = logEntryResponse{
				Seq:       entry.Seq,
				Action:    entry.Action.String(),
				Payload:   json.RawMessage(payload),
				CreatedAt: entry.CreatedAt,
			}
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func toChatMessages(msgs []*model.FollowUpMessage) []chatMessage {
	out := make([]chatMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = chatMessage{
			ID:        msg.ID.String(),
			Role:      msg.Role.String(),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		}
	}
	return out
}

func askFollowUpHandler(uc *usecase.FollowUpUseCase) http.HandlerFunc {
	type request struct {
		Message string `json:"message"`
	}
	type response struct {
		Messages []chatMessage `json:"messages"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}

		exchange, err := uc.Ask(r.Context(), userIDFrom(r.Context()), types.RunID(chi.URLParam(r, "runID")), req.Message)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}

		writeJSON(w, r, http.StatusCreated, response{Messages: toChatMessages(exchange)})
	}
}

func followUpHistoryHandler(uc *usecase.FollowUpUseCase) http.HandlerFunc {
	type response struct {
		Messages []chatMessage `json:"messages"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		history, err := uc.History(r.Context(), userIDFrom(r.Context()), types.RunID(chi.URLParam(r, "runID")))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}

		writeJSON(w, r, http.StatusOK, response{Messages: toChatMessages(history)})
	}
}
