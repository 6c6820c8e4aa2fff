package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pandodao/zilt-wallet/core"
	"github.com/twitchtv/twirp"
)

func (s *Server) render(w http.ResponseWriter, status int, v any) {
	buf := s.buffers.Get()
	defer s.buffers.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		s.logger.Error("json.Encode", "err", err)
		s.renderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	if werr := twirp.WriteError(w, toTwirpError(err)); werr != nil {
		s.logger.Error("twirp.WriteError", "err", werr)
	}
}

var kindCodes = map[core.ErrorKind]twirp.ErrorCode{
	core.ErrorKindNotAuthenticated:  twirp.Unauthenticated,
	core.ErrorKindValidation:        twirp.InvalidArgument,
	core.ErrorKindVerification:      twirp.FailedPrecondition,
	core.ErrorKindInsufficientFunds: twirp.Aborted,
	core.ErrorKindSigning:           twirp.Unavailable,
	core.ErrorKindSubmission:        twirp.Unavailable,
	core.ErrorKindPersistence:       twirp.DataLoss,
}

func toTwirpError(err error) twirp.Error {
	var terr twirp.Error
	if errors.As(err, &terr) {
		return terr
	}

	var e *core.Error
	if !errors.As(err, &e) {
		return twirp.InternalErrorWith(err)
	}

	code, ok := kindCodes[e.Kind]
	if !ok {
		code = twirp.Internal
	}

	terr = code.Error(e.Error()).
		WithMeta("kind", e.Kind.String()).
		WithMeta("retryable", strconv.FormatBool(core.IsRetryable(e)))

	if e.Code != "" {
		terr = terr.WithMeta("code", e.Code)
	}

	return terr
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return twirp.InvalidArgument.Error("malformed request body")
	}

	return nil
}
