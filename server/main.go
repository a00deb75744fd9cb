package main

import (
	"fmt"
	"net"
	"os"

	flag "github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/frankonly/finite/api"
	"github.com/frankonly/finite/finite"
	"github.com/frankonly/finite/log"
	"github.com/frankonly/finite/pflow"
	"github.com/frankonly/finite/storage"
)

var (
	tls       = flag.Bool("tls", false, "Connection uses TLS if true, else plain TCP")
	certFile  = flag.String("cert_file", "", "The TLS cert file")
	keyFile   = flag.String("key_file", "", "The TLS key file")
	dbDir     = flag.String("db_dir", "finite.db", "The ledger DB directory")
	modelFile = flag.String("model", "model.yaml", "The pflow model definition (YAML)")
	port      = flag.Int("port", 10000, "The server port")
	logFile   = flag.String("log_file", "", "Also write logs to this file")
)

func main() {
	flag.Parse()

	var paths []string
	if *logFile != "" {
		paths = append(paths, *logFile)
	}
	logger := log.New(paths...)
	defer logger.Sync()

	f, err := os.Open(*modelFile)
	if err != nil {
		logger.Fatalf("failed to open model: %v", err)
	}
	model, err := pflow.Load(f)
	f.Close()
	if err != nil {
		logger.Fatalf("failed to load model %s: %v", *modelFile, err)
	}

	ledger, err := finite.New(model, finite.WithLogger(logger))
	if err != nil {
		logger.Fatalf("failed to digest model: %v", err)
	}
	logger.Infow("model loaded", "schema", model.Schema, "hash", ledger.SchemaHash)

	db, err := storage.NewLevelDB(*dbDir)
	if err != nil {
		logger.Fatalf("failed to initialize db: %v", err)
	}
	defer db.Close()

	lis, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", *port))
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}

	var opts []grpc.ServerOption
	if *tls {
		if *certFile == "" || *keyFile == "" {
			logger.Fatal("--cert_file and --key_file are required with --tls")
		}
		creds, err := credentials.NewServerTLSFromFile(*certFile, *keyFile)
		if err != nil {
			logger.Fatalf("failed to generate credentials: %v", err)
		}
		opts = []grpc.ServerOption{grpc.Creds(creds)}
	}

	grpcServer := grpc.NewServer(opts...)
	api.RegisterLedgerServer(grpcServer, api.NewServer(ledger, db, logger))

	logger.Infow("serving", "port", *port)
	if err := grpcServer.Serve(lis); err != nil {
		logger.Errorw("server stopped", "error", err)
	}
}
