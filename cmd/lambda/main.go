package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	fiberadapter "github.com/awslabs/aws-lambda-go-api-proxy/fiber"

	"github.com/spec-kit/research-chat/internal/app"
	"github.com/spec-kit/research-chat/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to init application: %v", err)
	}
	defer application.Close()

	adapter := fiberadapter.New(application.HTTP)

	// The execution environment is frozen between invocations, so buffered
	// logs are shipped before each one returns.
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		defer application.Sync()
		return adapter.ProxyWithContext(ctx, req)
	})
}
