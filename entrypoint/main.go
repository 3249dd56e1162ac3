package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"seqmark.io/hmm/api"
	"seqmark.io/hmm/decode"
	"seqmark.io/hmm/logger"
	"seqmark.io/hmm/model"
	"seqmark.io/hmm/worker"
)

type Config struct {
	ModelsPath    string `envconfig:"HMM_MODELS_PATH" required:"true"`
	RestAPIActive bool   `envconfig:"HMM_REST_API_ACTIVE" default:"false"`
	RestAPIPort   string `envconfig:"HMM_REST_API_PORT" default:"10000"`
}

const catalogLoadMaxRetries = 5

func main() {
	logger.SetupLogging()
	hmmLogger := logger.NewLogger("Main")
	fatalErrLogger := hmmLogger.Fatal().Caller()
	demo := flag.Bool("demo", false, "decode the built-in example models and exit")
	wrap := flag.Bool("wrap", false, "re-exec the binary with stderr piped through the logs wrapper")
	flag.Parse()

	if *wrap {
		executable, err := os.Executable()
		if err != nil {
			fatalErrLogger.Err(err).Msg("Could not resolve own executable path")
			os.Exit(1)
		}
		logger.WrapProcess(executable, flag.Args()...)
		return
	}

	if *demo {
		runDemo()
		return
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}

	// Load model catalog
	catalogChannel := make(chan model.Catalog)
	go func() {
		for retry := 0; retry < catalogLoadMaxRetries; retry++ {
			catalog, err := model.LoadCatalog(config.ModelsPath)
			if err != nil {
				hmmLogger.Err(err).Msg("Failed to load model catalog. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			if len(catalog) == 0 {
				hmmLogger.Error().Msgf("No valid model definitions in %s. Retrying in 5 sec", config.ModelsPath)
				time.Sleep(5 * time.Second)
				continue
			}
			hmmLogger.Info().Msgf("Loaded %d models", len(catalog))
			catalogChannel <- catalog
			return
		}
		fatalErrLogger.Msg("Could not load model catalog after 5 retries, exiting")
		os.Exit(1)
	}()

	// block until the catalog loads
	catalog := <-catalogChannel

	if config.RestAPIActive {
		go func() {
			hmmLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Catalog: catalog,
			}
			http.HandleFunc("/", apiRequest.ProcessData)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			hmmLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
		}()
	}

	hmmLogger.Info().Msg("Start HMM Worker")
	for {
		rmqWorker, err := worker.New(catalog)
		if err != nil {
			hmmLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			hmmLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}

type demoCase struct {
	name     string
	m        *model.Model
	observed string
}

func runDemo() {
	cases := []demoCase{
		{"ewens_grant", model.EwensGrant(), "222"},
		{"eddy_splice_site", model.EddySpliceSite(), "CTTCATGTGAAAGCAGACGTAAGTCA"},
		{"gc_content", model.GCContent(), "abbaaabbab"},
	}
	for _, c := range cases {
		observed := strings.Split(c.observed, "")
		fmt.Printf("=== %s: %q ===\n", c.name, c.observed)

		path, err := decode.ViterbiPath(c.m, observed)
		if err != nil {
			fmt.Printf("viterbi: %v\n", err)
			continue
		}
		fmt.Printf("viterbi:   %s  (log10 p = %.6f)\n", strings.Join(path.States, " "), path.LogProb)

		if logProb, ok := decode.Score(c.m, path.States, observed); ok {
			fmt.Printf("score:     %.6f\n", logProb)
		}

		// Enumeration is exponential, keep it to the short demos.
		if len(observed) <= 10 {
			enum, err := decode.Enumerate(c.m, observed)
			if err != nil {
				fmt.Printf("enumerate: %v\n", err)
				continue
			}
			fmt.Printf("enumerate: %d valid sequences, best %s  (log10 p = %.6f)\n",
				len(enum.Hypotheses), strings.Join(enum.Best.States, " "), enum.Best.LogProb)
		}
		fmt.Println()
	}
}
