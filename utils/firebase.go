package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	FirebaseApp    *firebase.App
	FirebaseClient *messaging.Client
	once           sync.Once
	initErr        error
	isInitialized  bool
)

// InitFirebase initializes the Firebase Admin SDK and FCM client (singleton).
// Push notifications are optional: a missing credentials file disables them.
func InitFirebase() error {
	if isInitialized {
		return initErr
	}

	once.Do(func() {
		ctx := context.Background()

		credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if credentialsPath == "" {
			credentialsPath = os.Getenv("FCM_CREDENTIALS_PATH")
		}
		if credentialsPath == "" {
			credentialsPath = "./serviceAccountKey.json"
		}

		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			initErr = fmt.Errorf("firebase credentials not found at %s", credentialsPath)
			isInitialized = true
			return
		}

		projectID := os.Getenv("FCM_PROJECT_ID")
		conf := &firebase.Config{}
		if projectID != "" {
			conf.ProjectID = projectID
		}

		app, err := firebase.NewApp(ctx, conf, option.WithCredentialsFile(credentialsPath))
		if err != nil {
			initErr = fmt.Errorf("firebase app init failed: %w", err)
			isInitialized = true
			return
		}
		FirebaseApp = app

		client, err := app.Messaging(ctx)
		if err != nil {
			initErr = fmt.Errorf("FCM client init failed: %w", err)
			isInitialized = true
			return
		}
		FirebaseClient = client
		isInitialized = true
		log.Println("✅ Firebase messaging client ready")
	})

	return initErr
}

// IsFCMEnabled reports whether push sends can be attempted.
func IsFCMEnabled() bool {
	return FirebaseClient != nil
}

// GetInitError exposes the initialization failure, if any.
func GetInitError() error {
	return initErr
}

// SendPushToTokens sends one notification to a batch of device tokens.
// FCM caps multicast batches at 500 tokens.
func SendPushToTokens(ctx context.Context, tokens []string, title, body string) error {
	if FirebaseClient == nil {
		return errors.New("FCM not initialized")
	}
	if len(tokens) == 0 {
		return errors.New("no device tokens")
	}

	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	}

	resp, err := FirebaseClient.SendEachForMulticast(ctx, msg)
	if err != nil {
		return err
	}
	if resp.FailureCount > 0 {
		return fmt.Errorf("push partially failed: %d/%d tokens", resp.FailureCount, len(tokens))
	}
	return nil
}
