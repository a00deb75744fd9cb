package cli

import (
	"crypto/tls"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/frankonly/finite/api"
)

var apiClient *api.Client

// Client news or returns a ledger client
func Client() *api.Client {
	if apiClient == nil {
		creds := insecure.NewCredentials()
		if secureConn {
			creds = credentials.NewTLS(&tls.Config{})
		}

		conn, err := grpc.Dial(endpoint, grpc.WithTransportCredentials(creds))
		if err != nil {
			log.Fatalf("failed to establish connection with %s: %v", endpoint, err)
		}

		apiClient = api.NewClient(conn)
	}

	return apiClient
}
