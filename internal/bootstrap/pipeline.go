package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/config"
	"github.com/kailas-cloud/tdsqa/internal/index"
	"github.com/kailas-cloud/tdsqa/internal/metrics"
	"github.com/kailas-cloud/tdsqa/internal/ocr"
	"github.com/kailas-cloud/tdsqa/internal/scrape"
	openaiTransport "github.com/kailas-cloud/tdsqa/internal/transport/openai"
	"github.com/kailas-cloud/tdsqa/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/tdsqa/internal/usecase/health"
	"github.com/kailas-cloud/tdsqa/internal/usecase/retrieval"
)

// Pipeline is the fully wired question answering stack.
type Pipeline struct {
	Answers *answer.Service
	Health  *healthuc.Service
	chain   *EmbedderChain
}

// Close releases connections held by the pipeline.
func (p *Pipeline) Close() {
	p.chain.Close()
}

// NewPipeline wires OCR, the configured retrieval strategy and answer synthesis.
func NewPipeline(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Pipeline, error) {
	chain, err := NewEmbedderChain(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	completer := openaiTransport.NewCompleter(&openaiTransport.Config{
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.ChatModel,
		Provider: cfg.LLM.Provider,
		Logger:   logger,
	})

	retriever, opts, err := NewRetriever(cfg, chain.Embedder, logger)
	if err != nil {
		chain.Close()
		return nil, err
	}

	probes := []healthuc.Probe{healthuc.LLMProbe(chain.Provider)}
	if chain.Cache != nil {
		probes = append(probes, healthuc.CacheProbe(chain.Cache))
	}
	if !cfg.OCR.Disabled {
		probes = append(probes, healthuc.OCRProbe(tesseract(cfg.OCR)))
	}

	return &Pipeline{
		Answers: answer.New(retriever, NewOCR(ctx, cfg.OCR, logger), completer, opts),
		Health:  healthuc.New(healthuc.DefaultTimeout, probes...),
		chain:   chain,
	}, nil
}

// NewRetriever builds the configured retrieval strategy and the matching prompt style.
func NewRetriever(
	cfg config.Config, embedder retrieval.Embedder, logger *zap.Logger,
) (answer.Retriever, answer.Options, error) {
	switch cfg.Retrieval.Strategy {
	case config.StrategyScrape:
		sc := cfg.Retrieval.Scrape
		client := scrape.NewClient(scrape.ClientConfig{
			Timeout:   time.Duration(sc.TimeoutSec) * time.Second,
			RateLimit: sc.RateLimit,
			UserAgent: sc.UserAgent,
		})

		var fetchers []retrieval.Fetcher
		if sc.DocsURL != "" {
			docs, err := scrape.NewDocsFetcher(client, sc.DocsURL, sc.LinkPattern, sc.MaxItems, logger)
			if err != nil {
				return nil, answer.Options{}, fmt.Errorf("docs fetcher: %w", err)
			}
			fetchers = append(fetchers, docs)
		}
		if sc.ForumURL != "" {
			fetchers = append(fetchers, scrape.NewForumFetcher(client, sc.ForumURL, sc.MaxItems))
		}

		logger.Info("Scrape retrieval ready",
			zap.String("docs_url", sc.DocsURL),
			zap.String("forum_url", sc.ForumURL),
			zap.Int("max_items", sc.MaxItems),
		)

		retriever := retrieval.NewScrape(fetchers, retrieval.ScrapeOptions{
			MaxMatches: sc.MaxMatches,
			FetchTotal: metrics.FetchTotal,
			Retrieved:  metrics.RetrievedDocuments.WithLabelValues(config.StrategyScrape),
		})
		temperature := sc.Temperature
		return retriever, answer.Options{Style: answer.StyleScrape, Temperature: &temperature}, nil

	case config.StrategyVector:
		vc := cfg.Retrieval.Vector
		ix, err := index.Open(index.Options{
			IndexPath:    vc.IndexPath,
			MetadataPath: vc.MetadataPath,
			Collection:   vc.Collection,
			Logger:       logger,
		})
		if err != nil {
			return nil, answer.Options{}, fmt.Errorf("open index: %w", err)
		}

		logger.Info("Vector index loaded",
			zap.String("index_path", vc.IndexPath),
			zap.Int("documents", ix.Len()),
			zap.Int("top_k", vc.TopK),
		)

		retriever := retrieval.NewVector(
			embedder, ix, vc.TopK,
			metrics.RetrievedDocuments.WithLabelValues(config.StrategyVector),
		)
		return retriever, answer.Options{Style: answer.StyleVector}, nil

	default:
		return nil, answer.Options{}, fmt.Errorf("unknown retrieval strategy %q", cfg.Retrieval.Strategy)
	}
}

// NewOCR returns nil when OCR is disabled so the answer service skips images.
func NewOCR(ctx context.Context, cfg config.OCRConfig, logger *zap.Logger) answer.OCR {
	if cfg.Disabled {
		logger.Info("OCR disabled")
		return nil
	}

	engine := tesseract(cfg)
	if v, err := engine.Version(ctx); err != nil {
		logger.Warn("Tesseract not available, image text will be empty", zap.Error(err))
	} else {
		logger.Info("Tesseract found", zap.String("version", v))
	}

	return ocr.New(engine, ocr.Options{
		Scale:    cfg.Scale,
		MaxChars: cfg.MaxChars,
		Total:    metrics.OCRTotal,
		Logger:   logger,
	})
}

func tesseract(cfg config.OCRConfig) ocr.Tesseract {
	return ocr.Tesseract{Path: cfg.TesseractPath, Languages: cfg.Languages}
}
