package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/oarkflow/newsml/config"
	"github.com/oarkflow/newsml/pipeline"
	"github.com/oarkflow/newsml/runstore"
)

const usage = `usage: newsml <command> [flags]

commands:
  fetch              pull fresh articles from the configured feeds and API
  pretrain           train initial summarizer weights from fetched texts
  train-summarizer   fine-tune the summarizer on a paired dataset
  eval-summarizer    score an existing summarizer checkpoint
  train-categorizer  fit the topic classifier on a labeled dataset
  eval-categorizer   score an existing classifier artifact
  run                train and evaluate both tasks

run "newsml <command> -h" for command flags.
`

func main() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("newsml ")
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: %v", err)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "fetch":
		return cmdFetch(ctx, args)
	case "pretrain":
		return cmdPretrain(ctx, args)
	case "train-summarizer":
		return cmdTrainSummarizer(ctx, args)
	case "eval-summarizer":
		return cmdEvalSummarizer(ctx, args)
	case "train-categorizer":
		return cmdTrainCategorizer(ctx, args)
	case "eval-categorizer":
		return cmdEvalCategorizer(ctx, args)
	case "run":
		return cmdRun(ctx, args)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// open loads the configuration and the run store. The caller closes
// the store.
func open(cfgPath string) (config.Config, *runstore.Store, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	store, err := runstore.Open(cfg.DBPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, store, nil
}

func cmdFetch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	cfgPath := fs.String("config", "newsml.yaml", "configuration file")
	days := fs.Int("days", 1, "how many days back to query the news API")
	fs.Parse(args)

	cfg, store, err := open(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := pipeline.New(cfg, store).Fetch(ctx, os.Getenv("NEWSML_API_KEY"), *days)
	if err != nil {
		return err
	}
	log.Printf("fetched %d articles", n)
	return nil
}

func cmdPretrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pretrain", flag.ExitOnError)
	cfgPath := fs.String("config", "newsml.yaml", "configuration file")
	data := fs.String("data", "", "texts JSONL (default <data_dir>/fetched.jsonl)")
	fs.Parse(args)

	cfg, store, err := open(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	path := *data
	if path == "" {
		path = filepath.Join(cfg.DataDir, "fetched.jsonl")
	}
	out, err := pipeline.New(cfg, store).Pretrain(ctx, path)
	if err != nil {
		return err
	}
	log.Printf("wrote pretrained checkpoint %s", out)
	return nil
}

func cmdTrainSummarizer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train-summarizer", flag.ExitOnError)
	cfgPath := fs.String("config", "newsml.yaml", "configuration file")
	data := fs.String("data", "", "training dataset (CSV or JSONL)")
	initCk := fs.String("init", "", "pretrained checkpoint to start from")
	fs.Parse(args)
	if *data == "" {
		return fmt.Errorf("train-summarizer: -data is required")
	}

	cfg, store, err := open(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := pipeline.New(cfg, store).RunSummarization(ctx, *data, *initCk)
	if err != nil {
		return err
	}
	log.Printf("run %s rouge1=%.4f rouge2=%.4f rougeL=%.4f",
		report.RunID, report.Rouge1, report.Rouge2, report.RougeL)
	return nil
}

func cmdEvalSummarizer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eval-summarizer", flag.ExitOnError)
	cfgPath := fs.String("config", "newsml.yaml", "configuration file")
	checkpoint := fs.String("checkpoint", "", "summarizer checkpoint to score")
	data := fs.String("data", "", "evaluation dataset (CSV or JSONL)")
	fs.Parse(args)
	if *checkpoint == "" || *data == "" {
		return fmt.Errorf("eval-summarizer: -checkpoint and -data are required")
	}

	cfg, store, err := open(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := pipeline.New(cfg, store).EvaluateSummarizer(ctx, *checkpoint, *data)
	if err != nil {
		return err
	}
	log.Printf("run %s rouge1=%.4f rouge2=%.4f rougeL=%.4f over %d articles",
		report.RunID, report.Rouge1, report.Rouge2, report.RougeL, report.Examples)
	return nil
}

func cmdTrainCategorizer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train-categorizer", flag.ExitOnError)
	cfgPath := fs.String("config", "newsml.yaml", "configuration file")
	data := fs.String("data", "", "labeled dataset (CSV or JSONL)")
	fs.Parse(args)
	if *data == "" {
		return fmt.Errorf("train-categorizer: -data is required")
	}

	cfg, store, err := open(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := pipeline.New(cfg, store).RunCategorization(ctx, *data)
	if err != nil {
		return err
	}
	log.Printf("run %s accuracy=%.4f macro_f1=%.4f", report.RunID, report.Accuracy, report.MacroF1)
	return nil
}

func cmdEvalCategorizer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eval-categorizer", flag.ExitOnError)
	cfgPath := fs.String("config", "newsml.yaml", "configuration file")
	model := fs.String("model", "", "classifier artifact to score")
	data := fs.String("data", "", "labeled dataset (CSV or JSONL)")
	fs.Parse(args)
	if *model == "" || *data == "" {
		return fmt.Errorf("eval-categorizer: -model and -data are required")
	}

	cfg, store, err := open(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := pipeline.New(cfg, store).EvaluateCategorizer(ctx, *model, *data)
	if err != nil {
		return err
	}
	log.Printf("run %s accuracy=%.4f macro_f1=%.4f over %d records",
		report.RunID, report.Accuracy, report.MacroF1, report.Examples)
	return nil
}

func cmdRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "newsml.yaml", "configuration file")
	summaries := fs.String("summaries", "", "summarization dataset (CSV or JSONL)")
	categories := fs.String("categories", "", "categorization dataset (CSV or JSONL)")
	initCk := fs.String("init", "", "pretrained checkpoint for the summarizer")
	fs.Parse(args)
	if *summaries == "" || *categories == "" {
		return fmt.Errorf("run: -summaries and -categories are required")
	}

	cfg, store, err := open(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	p := pipeline.New(cfg, store)
	sum, err := p.RunSummarization(ctx, *summaries, *initCk)
	if err != nil {
		return err
	}
	cat, err := p.RunCategorization(ctx, *categories)
	if err != nil {
		return err
	}
	log.Printf("summarization run %s rouge1=%.4f rougeL=%.4f", sum.RunID, sum.Rouge1, sum.RougeL)
	log.Printf("categorization run %s accuracy=%.4f macro_f1=%.4f", cat.RunID, cat.Accuracy, cat.MacroF1)
	return nil
}
