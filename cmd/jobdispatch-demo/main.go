package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cyphera/jobdispatch/internal/client/aws"
	"github.com/cyphera/jobdispatch/internal/client/custodial"
	httpClient "github.com/cyphera/jobdispatch/internal/client/http"
	"github.com/cyphera/jobdispatch/internal/client/sponsor"
	"github.com/cyphera/jobdispatch/internal/config"
	"github.com/cyphera/jobdispatch/internal/logger"
	"github.com/cyphera/jobdispatch/internal/metrics"
	"github.com/cyphera/jobdispatch/pkg/chain"
	"github.com/cyphera/jobdispatch/pkg/dispatch"
	"github.com/cyphera/jobdispatch/pkg/fees"
	"github.com/cyphera/jobdispatch/pkg/jobchain"
	"github.com/cyphera/jobdispatch/pkg/signer"
)

func main() {
	providerAddr := flag.String("provider", "", "provider wallet address for the demo job")
	evaluatorAddr := flag.String("evaluator", "", "evaluator wallet address for the demo job")
	content := flag.String("memo", "hello from jobdispatch", "content of the first memo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logger.InitLogger(cfg.Stage)
	defer logger.Sync()

	if !common.IsHexAddress(*providerAddr) || !common.IsHexAddress(*evaluatorAddr) {
		log.Fatal("both -provider and -evaluator must be valid addresses")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	provider, err := chain.NewEthProvider(cfg.Network.RPCURL)
	if err != nil {
		logger.Log.Fatal("failed to connect to RPC endpoint", zap.Error(err))
	}
	defer provider.Close()

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)
	dispatchMetrics := metrics.NewDispatchMetrics(prometheus.DefaultRegisterer)

	authority, err := buildAuthority(ctx, cfg, provider, httpMetrics)
	if err != nil {
		logger.Log.Fatal("failed to initialize signing authority", zap.Error(err))
	}

	estimatorOpts := []fees.Option{fees.WithMultiplier(cfg.FeeMultiplier)}
	if cfg.MaxFeeOverride != nil {
		estimatorOpts = append(estimatorOpts, fees.WithMaxFeeOverride(cfg.MaxFeeOverride))
	}
	if cfg.MaxPriorityFee != nil {
		estimatorOpts = append(estimatorOpts, fees.WithPriorityFeeOverride(cfg.MaxPriorityFee))
	}
	estimator := fees.NewEstimator(provider, estimatorOpts...)

	routerOpts := []dispatch.RouterOption{dispatch.WithObserver(dispatchMetrics)}
	if cfg.UseSponsor() {
		sponsorClient := sponsor.NewClient(cfg.Network.SponsorEndpoint, cfg.SponsorAPIKey,
			httpClient.WithMetricsCollector(httpMetrics))
		routerOpts = append(routerOpts, dispatch.WithSponsor(signer.NewSponsoredSender(sponsorClient)))
	}
	router := dispatch.NewRouter(provider, authority, estimator, cfg.Network.JobContract, routerOpts...)

	client := jobchain.NewClient(router, cfg.Network.JobContract, cfg.Network.PaymentToken)

	job, err := client.CreateJob(ctx, common.HexToAddress(*providerAddr), common.HexToAddress(*evaluatorAddr), time.Now().Add(24*time.Hour))
	if err != nil {
		logger.Log.Fatal("failed to create job", zap.Error(err))
	}
	fmt.Printf("job %s created in tx %s\n", job.JobID, job.TxHash.Hex())

	memo, err := client.CreateMemo(ctx, job.JobID, *content, jobchain.MemoMessage, false, jobchain.PhaseNegotiation)
	if err != nil {
		logger.Log.Fatal("failed to create memo", zap.Error(err))
	}
	fmt.Printf("memo %s created in tx %s\n", memo.MemoID, memo.TxHash.Hex())
}

// buildAuthority selects the signing path: the custodial service when
// configured, otherwise a local key. Custodial key material may live in
// Secrets Manager.
func buildAuthority(ctx context.Context, cfg *config.Config, provider chain.Provider, httpMetrics *metrics.HTTPMetrics) (signer.Authority, error) {
	if cfg.UseCustodial() {
		secrets, err := aws.NewSecretsManagerClient(ctx)
		if err != nil {
			return nil, err
		}
		keyMaterial, err := secrets.GetSecretString(ctx, "AUTH_KEY_SECRET_ARN", "AUTH_KEY_MATERIAL")
		if err != nil {
			return nil, err
		}

		custodialClient := custodial.NewClient(cfg.CustodialBaseURL, cfg.CustodialAPIKey, cfg.CustodialAppID,
			httpClient.WithMetricsCollector(httpMetrics))
		return signer.NewCustodialAuthority(ctx, custodialClient, cfg.CustodialWallet, keyMaterial)
	}

	if cfg.PrivateKeyHex == "" {
		return nil, fmt.Errorf("no signing path configured: set CUSTODIAL_* or PRIVATE_KEY")
	}
	return signer.NewLocalAuthority(ctx, cfg.PrivateKeyHex, provider)
}
