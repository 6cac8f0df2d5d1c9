// Package spacesvc talks to the Eurus service that hosts virtual lesson
// spaces.
package spacesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type eurusService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ core.SpaceService = (*eurusService)(nil)

func NewEurusService(conf *core.Config) *eurusService {
	return &eurusService{
		baseURL: strings.TrimRight(conf.Eurus.BaseURL, "/"),
		apiKey:  conf.Eurus.APIKey,
		client:  &http.Client{Timeout: conf.Eurus.Timeout},
	}
}

func (svc eurusService) CreateSpace(ctx context.Context, sreq core.SpaceRequest) (json.RawMessage, error) {
	body, err := json.Marshal(sreq)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling space request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.baseURL+"/api/space/", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building space request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", svc.apiKey)

	res, err := svc.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling Eurus")
	}
	defer func() { _ = res.Body.Close() }()

	resBody, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading Eurus response")
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.Errorf("Eurus returned %d: %s", res.StatusCode, resBody)
	}
	return resBody, nil
}
