package api

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"

	"seqmark.io/hmm/decode"
	"seqmark.io/hmm/model"
	"seqmark.io/hmm/utils"
)

type Request struct {
	Catalog model.Catalog
}

type decodeRequest struct {
	Model       string `json:"model"`
	Observation string `json:"observation"`
}

type decodeResponse struct {
	Model       string   `json:"model"`
	Observation []string `json:"observation"`
	States      []string `json:"states"`
	LogProb     float64  `json:"log_prob"`
}

func (req *Request) ProcessData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if r.Method != "POST" {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	msg, err := ioutil.ReadAll(r.Body)
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	var request decodeRequest
	if err := json.Unmarshal(msg, &request); err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not parse request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	m, err := req.Catalog.Get(request.Model)
	if err != nil {
		logger.Err(err).Int("status", http.StatusNotFound).Msg("Requested model is not loaded")
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	observed := utils.SplitSymbols(request.Observation)
	logger.Info().Str("model", request.Model).Int("length", len(observed)).Msg("Decoding request from API")

	path, err := decode.ViterbiPath(m, observed)
	if err != nil {
		if errors.Is(err, decode.ErrNoExplanation) {
			logger.Err(err).Int("status", http.StatusUnprocessableEntity).Msg("Observation has no explanation under the model")
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		logger.Err(err).Int("status", http.StatusInternalServerError).Msg("Decode failed")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	resp, _ := json.Marshal(decodeResponse{
		Model:       request.Model,
		Observation: observed,
		States:      path.States,
		LogProb:     path.LogProb,
	})
	_, _ = w.Write(resp)
	logger.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}
