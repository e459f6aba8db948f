package repository

import (
	"context"
	"net/url"

	"pox-exporter/client"
	"pox-exporter/config"
	"pox-exporter/models"
)

// It abstracts the upstream node and indexer APIs from the exporter logic
type PoxRepositoryInterface interface {
	FetchCycleInfo(ctx context.Context) (*models.CycleInfoRaw, error)
	FetchAddressLock(ctx context.Context, address string) (*models.AddressLockInfo, error)
}

// JSONGetter is the single upstream operation the repository needs.
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, out interface{}) error
}

// PoxRepository implements PoxRepositoryInterface over plain HTTP GETs
type PoxRepository struct {
	http       JSONGetter
	nodeURL    string
	stackerAPI string
}

// NewPoxRepository creates a repository reading from the URLs in cfg
func NewPoxRepository(cfg config.Config, getter JSONGetter) *PoxRepository {
	if getter == nil {
		getter = client.NewHTTPClient(client.DefaultTimeout)
	}
	return &PoxRepository{
		http:       getter,
		nodeURL:    cfg.NodeURL,
		stackerAPI: cfg.StackerAPIURL,
	}
}

// FetchCycleInfo reads the node's /v2/pox document. Fields the node leaves out
// keep the defaults from models.NewCycleInfoRaw.
func (r *PoxRepository) FetchCycleInfo(ctx context.Context) (*models.CycleInfoRaw, error) {
	info := models.NewCycleInfoRaw()
	if err := r.http.GetJSON(ctx, r.nodeURL+"/v2/pox", info); err != nil {
		return nil, err
	}
	return info, nil
}

// FetchAddressLock reads the stacking lock of one address from the indexer API
func (r *PoxRepository) FetchAddressLock(ctx context.Context, address string) (*models.AddressLockInfo, error) {
	info := models.NewAddressLockInfo()
	endpoint := r.stackerAPI + "/extended/v1/address/" + url.PathEscape(address) + "/stx"
	if err := r.http.GetJSON(ctx, endpoint, info); err != nil {
		return nil, err
	}
	return info, nil
}
