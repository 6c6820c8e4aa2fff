package cmd

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/twitchtv/twirp"
)

type errorResponse struct {
	Code string            `json:"code"`
	Msg  string            `json:"msg"`
	Meta map[string]string `json:"meta"`
}

func (e *errorResponse) twirpError() twirp.Error {
	code := twirp.ErrorCode(e.Code)
	if !twirp.IsValidErrorCode(code) {
		code = twirp.Unknown
	}

	err := twirp.NewError(code, e.Msg)
	for k, v := range e.Meta {
		err = err.WithMeta(k, v)
	}

	return err
}

func request(cmd *cobra.Command) *resty.Request {
	client := resty.New().
		SetBaseURL(viper.GetString("endpoint") + "/api").
		SetTimeout(time.Minute)

	return client.R().
		SetContext(cmd.Context()).
		SetHeader("X-Request-Id", uuid.NewString()).
		SetError(&errorResponse{})
}

// do sends r and decodes a failed response into a twirp error.
func do(r *resty.Request, method, url string) error {
	resp, err := r.Execute(method, url)
	if err != nil {
		return err
	}

	if resp.IsError() {
		if e, ok := resp.Error().(*errorResponse); ok && e.Code != "" {
			return e.twirpError()
		}

		return twirp.NewError(twirp.Unknown, resp.Status())
	}

	return nil
}
