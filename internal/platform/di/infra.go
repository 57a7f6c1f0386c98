// internal/platform/di/infra.go
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "coplace/internal/infra/config"
	firestoreinfra "coplace/internal/infra/firestore"
	"coplace/internal/infra/secrets"
)

// Infra owns the external GCP clients (Close-managed).
// Firestore and GCS are strict; Firebase Auth and Secret Manager are
// best-effort (warn + continue).
type Infra struct {
	ProjectID string

	Firestore     *firestoreinfra.ClientWrapper
	GCS           *storage.Client
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secrets.Provider
}

func NewInfra(ctx context.Context, cfg *appcfg.Config) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("di.infra: config is nil")
	}
	projectID := cfg.ProjectID()
	if projectID == "" {
		return nil, errors.New("di.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GOOGLE_CLOUD_PROJECT)")
	}
	inf := &Infra{ProjectID: projectID}

	var clientOpts []option.ClientOption
	if credFile := cfg.CredentialsFile(); credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[di.infra] using credentials file .../%s", filepath.Base(credFile))
	} else {
		log.Printf("[di.infra] using Application Default Credentials")
	}

	// 1) Firestore (strict)
	fs, err := firestoreinfra.NewClient(ctx, projectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("di.infra: firestore (project=%s): %w", projectID, err)
	}
	inf.Firestore = fs

	// 2) GCS (strict)
	gcsClient, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		_ = inf.Close()
		return nil, fmt.Errorf("di.infra: storage.NewClient failed: %w", err)
	}
	inf.GCS = gcsClient
	log.Printf("[di.infra] GCS storage client initialized")

	// 3) Firebase Auth (best-effort: without it every signed-in route answers 503)
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, clientOpts...)
	if err != nil {
		log.Printf("[di.infra] WARN: firebase app init failed: %v", err)
	} else if authClient, err := fbApp.Auth(ctx); err != nil {
		log.Printf("[di.infra] WARN: firebase auth init failed: %v", err)
	} else {
		inf.FirebaseAuth = authClient
		log.Printf("[di.infra] Firebase Auth initialized")
	}

	// 4) Secret Manager (best-effort)
	if sm, err := secrets.NewProvider(ctx, projectID, clientOpts...); err != nil {
		log.Printf("[di.infra] WARN: secret manager init failed: %v", err)
	} else {
		inf.SecretManager = sm
	}

	return inf, nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	return nil
}
