// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	httpin "coplace/internal/adapters/in/http"
	"coplace/internal/adapters/in/http/handler"
	"coplace/internal/adapters/in/http/middleware"
	fbadapter "coplace/internal/adapters/out/firebase"
	fsrepo "coplace/internal/adapters/out/firestore"
	"coplace/internal/adapters/out/gcs"
	"coplace/internal/adapters/out/gemini"
	"coplace/internal/adapters/out/mail"
	"coplace/internal/adapters/out/memory"
	"coplace/internal/application/query/catalog"
	usecase "coplace/internal/application/usecase"
	cartdom "coplace/internal/domain/cart"
	"coplace/internal/domain/common"
	productdom "coplace/internal/domain/product"
	storydom "coplace/internal/domain/story"
	threaddom "coplace/internal/domain/thread"
	userdom "coplace/internal/domain/user"
	appcfg "coplace/internal/infra/config"
)

// Container is everything main.go needs; main stays thin.
type Container struct {
	Config *appcfg.Config
	Infra  *Infra // nil with the memory backend

	Catalog  *catalog.Projection
	Feed     *usecase.FeedUsecase
	Sessions *usecase.CartSessions

	deps    httpin.RouterDeps
	cleanup []func()
}

// repositories are the outbound ports, Firestore- or memory-backed.
type repositories struct {
	products productdom.Repository
	carts    cartdom.Repository
	threads  threaddom.Repository
	users    userdom.Repository
	images   usecase.ImageStore
	verifier userdom.TokenVerifier
}

// NewContainer builds adapters, use cases and handlers, then starts the
// catalog and feed subscriptions.
func NewContainer(ctx context.Context, cfg *appcfg.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}
	c := &Container{Config: cfg}
	clock := common.SystemClock{}

	var repos repositories
	switch cfg.StoreBackend {
	case appcfg.BackendMemory:
		repos = memoryRepositories(cfg, clock)
		log.Printf("[di] store backend = memory")
	default:
		inf, err := NewInfra(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.Infra = inf
		c.cleanup = append(c.cleanup, func() { _ = inf.Close() })
		repos = firestoreRepositories(inf, cfg)
		log.Printf("[di] store backend = firestore project=%s", inf.ProjectID)
	}

	gen := c.buildGenerator(ctx)
	mailer := c.buildMailer(ctx)

	// use cases / projections
	c.Catalog = catalog.NewProjection(repos.products)
	c.Feed = usecase.NewFeedUsecase(repos.threads)
	c.Sessions = usecase.NewCartSessions(repos.carts, clock)
	productUC := usecase.NewProductUsecase(repos.products, repos.images, clock)
	storyUC := usecase.NewStoryUsecase(gen)
	checkoutUC := usecase.NewCheckoutUsecase(mailer, clock)
	profileUC := usecase.NewProfileUsecase(repos.users, clock)

	if err := c.Catalog.Start(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("di: start catalog: %w", err)
	}
	c.cleanup = append(c.cleanup, c.Catalog.Close)

	if err := c.Feed.Start(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("di: start feed: %w", err)
	}
	c.cleanup = append(c.cleanup, c.Feed.Close)
	c.cleanup = append(c.cleanup, c.Sessions.Close)

	c.deps = httpin.RouterDeps{
		Auth:          &middleware.AuthMiddleware{Verifier: repos.verifier, Profiles: profileUC},
		CORSOrigins:   cfg.CORSOrigins,
		Catalog:       handler.NewCatalogHandler(c.Catalog, productUC, storyUC),
		Session:       handler.NewSessionHandler(c.Sessions, profileUC),
		Cart:          handler.NewCartHandler(c.Sessions, productUC, checkoutUC),
		Thread:        handler.NewThreadHandler(c.Feed, clock),
		SellerProduct: handler.NewSellerProductHandler(productUC),
	}
	return c, nil
}

func (c *Container) RouterDeps() httpin.RouterDeps { return c.deps }

// Close releases resources in reverse creation order.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.cleanup) - 1; i >= 0; i-- {
		c.cleanup[i]()
	}
	c.cleanup = nil
}

func firestoreRepositories(inf *Infra, cfg *appcfg.Config) repositories {
	client := inf.Firestore.Client
	repos := repositories{
		products: fsrepo.NewProductRepositoryFS(client),
		carts:    fsrepo.NewCartRepositoryFS(client),
		threads:  fsrepo.NewThreadRepositoryFS(client),
		users:    fsrepo.NewUserRepositoryFS(client),
	}
	if b := strings.TrimSpace(cfg.ProductImageBucket); b != "" {
		repos.images = gcs.NewProductImageRepositoryGCS(inf.GCS, b)
	} else {
		log.Printf("[di] WARN: PRODUCT_IMAGE_BUCKET is empty (image upload disabled)")
	}
	if inf.FirebaseAuth != nil {
		repos.verifier = fbadapter.NewTokenVerifier(inf.FirebaseAuth)
	}
	return repos
}

func memoryRepositories(cfg *appcfg.Config, clock common.Clock) repositories {
	verifier := memory.NewTokenVerifier()
	for _, raw := range cfg.DevTokens {
		token, id, ok := parseDevToken(raw)
		if !ok {
			log.Printf("[di] WARN: ignoring malformed DEV_TOKENS entry")
			continue
		}
		verifier.Register(token, id)
	}
	return repositories{
		products: memory.NewProductRepository(clock),
		carts:    memory.NewCartRepository(),
		threads:  memory.NewThreadRepository(clock),
		users:    memory.NewUserRepository(),
		images:   memory.NewImageStore(""),
		verifier: verifier,
	}
}

// parseDevToken reads "token=uid|Display Name|email" (name and email optional).
func parseDevToken(raw string) (string, userdom.Identity, bool) {
	token, rest, ok := strings.Cut(strings.TrimSpace(raw), "=")
	if !ok || strings.TrimSpace(token) == "" {
		return "", userdom.Identity{}, false
	}
	parts := strings.SplitN(rest, "|", 3)
	id := userdom.Identity{UID: strings.TrimSpace(parts[0])}
	if id.UID == "" {
		return "", userdom.Identity{}, false
	}
	if len(parts) > 1 {
		id.DisplayName = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		id.Email = strings.TrimSpace(parts[2])
	}
	return strings.TrimSpace(token), id, true
}

func (c *Container) secret(ctx context.Context, direct, secretID string) string {
	if strings.TrimSpace(direct) != "" || c.Infra == nil {
		return strings.TrimSpace(direct)
	}
	v, err := c.Infra.SecretManager.Resolve(ctx, direct, secretID)
	if err != nil {
		log.Printf("[di] WARN: secret %s: %v", secretID, err)
		return ""
	}
	return v
}

// buildGenerator returns nil when no Gemini key is configured; the story
// endpoints then answer "analysis failed" / empty recommendations.
func (c *Container) buildGenerator(ctx context.Context) storydom.TextGenerator {
	key := c.secret(ctx, c.Config.GeminiAPIKey, c.Config.GeminiAPIKeySecret)
	if key == "" {
		log.Printf("[di] WARN: GEMINI_API_KEY is empty (AI story disabled)")
		return nil
	}
	g, err := gemini.New(ctx, key, c.Config.GeminiModel)
	if err != nil {
		log.Printf("[di] WARN: gemini init failed: %v", err)
		return nil
	}
	c.cleanup = append(c.cleanup, func() { _ = g.Close() })
	log.Printf("[di] gemini model=%s", c.Config.GeminiModel)
	return g
}

// buildMailer returns nil unless both the SendGrid key and the sender are set.
func (c *Container) buildMailer(ctx context.Context) usecase.ReceiptMailer {
	key := c.secret(ctx, c.Config.SendGridAPIKey, c.Config.SendGridAPIKeySecret)
	from := strings.TrimSpace(c.Config.MailFrom)
	if key == "" || from == "" {
		log.Printf("[di] WARN: SENDGRID_API_KEY / SENDGRID_FROM empty (receipt mail disabled)")
		return nil
	}
	return mail.NewReceiptMailer(mail.NewSendGridClient(key, c.Config.MailFromName), from)
}
