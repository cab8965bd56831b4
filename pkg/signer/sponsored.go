package signer

import (
	"context"

	"github.com/cyphera/jobdispatch/internal/client/sponsor"
	"github.com/cyphera/jobdispatch/internal/logger"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// SponsoredSender implements Sponsor over the sponsorship bundler API. It
// decorates any authority's traffic; it holds no keys of its own.
type SponsoredSender struct {
	client *sponsor.Client
	logger *zap.Logger
}

// NewSponsoredSender creates a Sponsor backed by the bundler client.
func NewSponsoredSender(client *sponsor.Client) *SponsoredSender {
	return &SponsoredSender{
		client: client,
		logger: logger.Log,
	}
}

// SendSponsored bundles the call for sponsored execution and waits for
// the bundler to report the transaction hash. Fee fields on tx are
// ignored: the paymaster pays.
func (s *SponsoredSender) SendSponsored(ctx context.Context, from common.Address, tx *TxRequest) (common.Hash, error) {
	call := sponsor.Call{
		To:   tx.To.Hex(),
		Data: hexutil.Encode(tx.Data),
	}
	if tx.Value != nil && tx.Value.Sign() > 0 {
		call.Value = tx.Value.String()
	}

	bundle, err := s.client.SubmitBundle(ctx, sponsor.SubmitBundleRequest{
		From:  from.Hex(),
		Calls: []sponsor.Call{call},
	})
	if err != nil {
		return common.Hash{}, err
	}

	hash := bundle.TxHash
	if hash == "" {
		hash, err = s.client.WaitForHash(ctx, bundle.ID)
		if err != nil {
			return common.Hash{}, err
		}
	}

	s.logger.Debug("sponsored bundle landed",
		zap.String("from", from.Hex()),
		zap.String("tx_hash", hash))

	return common.HexToHash(hash), nil
}
