package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/depositagent/agent"
	"github.com/tbxark/depositagent/config"
	"github.com/tbxark/depositagent/extract"
	"github.com/tbxark/depositagent/types"
)

func main() {
	conf := flag.String("config", "config.json", "path to config file")
	variant := flag.String("variant", string(types.VariantFDRegular), "account variant: FD_REGULAR, FD_TAX_SAVER or RD")
	flag.Parse()
	cfg, err := config.Load(*conf)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	err = startApp(context.Background(), cfg, *variant)
	if err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func startApp(ctx context.Context, cfg *config.Config, variant string) error {
	slog.SetLogLoggerLevel(slog.LevelInfo)
	var extractor extract.Extractor
	if cfg.LLMEnabled() {
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			BaseURL: cfg.LLM.BaseURL,
		})
		if err != nil {
			return err
		}
		toolBased, err := extract.NewToolBasedExtractor(cm)
		if err != nil {
			return err
		}
		extractor = extract.NewFailbackExtractor(toolBased, extract.NewTextExtractor(cm))
	}
	engine := agent.NewEngine(
		agent.NewMemorySessionStore(cfg.SessionTTL),
		extractor,
		agent.WithAccountManager(&ReceiptManager{out: os.Stdout}),
		agent.WithTrimmer(agent.KeepSystemLastNTrimmer{N: cfg.HistoryWindow}),
	)
	started, err := engine.Start(ctx, &agent.StartRequest{Variant: types.Variant(variant)})
	if err != nil {
		return err
	}
	depositAgent := agent.NewAgent(
		"DepositAssistant",
		"An agent that opens fixed and recurring deposit accounts via conversation",
		engine,
	)
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: depositAgent,
	})
	chatCtx := agent.WithSessionID(ctx, started.SessionID)
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("Assistant: %s\n======\n", started.WelcomePrompt)
	for {
		fmt.Print("You: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("Input closed. Bye.")
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		iter := runner.Run(chatCtx, []adk.Message{schema.UserMessage(input)})
		done := false
		for {
			event, ok := iter.Next()
			if !ok {
				break
			}
			if event.Err != nil {
				return event.Err
			}
			msg, mErr := event.Output.MessageOutput.GetMessage()
			if mErr != nil {
				return mErr
			}
			fmt.Printf("\nAssistant: %v\n======\n", msg.Content)
			if resp, ok := event.Output.CustomizedOutput.(*agent.TurnResponse); ok && resp.Phase.Terminal() {
				done = true
			}
		}
		if done {
			return nil
		}
	}
}
