// Package main runs an interactive terminal chat against the reply pipeline.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yuli2514/rurichat/internal/chat"
	"github.com/yuli2514/rurichat/internal/config"
	"github.com/yuli2514/rurichat/internal/models"
	"github.com/yuli2514/rurichat/internal/store"
	"github.com/yuli2514/rurichat/internal/types"
)

func main() {
	// The .env file is optional; a missing file falls through to the
	// process environment.
	_ = godotenv.Load()
	cfg := config.Load()

	if path := os.Getenv("RURICHAT_TUNABLES"); path != "" {
		tun, err := config.LoadTunables(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load tunables: %v\n", err)
			os.Exit(1)
		}
		cfg.Tunables = tun
	}

	log := newLogger(cfg.LogMode)
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n正在关闭...")
		cancel()
	}()

	kv, err := store.OpenSQLite(cfg.DataPath)
	if err != nil {
		log.Error("failed to open store", "path", cfg.DataPath, "error", err)
		os.Exit(1)
	}
	st := store.NewStore(kv)
	defer st.Close()

	if err := seedAPIConfig(st, cfg); err != nil {
		log.Error("failed to seed api config", "error", err)
		os.Exit(1)
	}

	gateway := models.NewGateway()
	svc := chat.NewService(st, gateway, cfg.Tunables, log)

	char, err := pickCharacter(st)
	if err != nil {
		log.Error("failed to pick character", "error", err)
		os.Exit(1)
	}
	fmt.Printf("正在与 %s 聊天（/offline 切换线下模式，/exit 退出）\n", char.DisplayName())

	if err := runLoop(ctx, svc, char); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("chat loop exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(mode string) *slog.Logger {
	if mode == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// seedAPIConfig copies env-provided endpoint settings into the store when it
// holds none yet, so a fresh install works without a settings screen.
func seedAPIConfig(st *store.Store, cfg config.Config) error {
	stored, err := st.APIConfig.Get()
	if err != nil {
		return err
	}
	if stored.Configured() || cfg.APIEndpoint == "" {
		return nil
	}
	return st.APIConfig.Put(types.ChatAPIConfig{
		Endpoint:    cfg.APIEndpoint,
		Key:         cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	})
}

func pickCharacter(st *store.Store) (*types.Character, error) {
	chars, err := st.Characters.List()
	if err != nil {
		return nil, err
	}
	if len(chars) > 0 {
		return &chars[0], nil
	}
	created, err := st.Characters.Create(types.Character{
		Name:   "瑠璃",
		Prompt: "你是一个温柔、爱开玩笑的女孩，说话简短自然。",
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

type terminalSink struct {
	name string
}

func (s *terminalSink) OnMessage(msg types.Message) {
	switch msg.Type {
	case types.TypeImage:
		fmt.Printf("%s: [图片] %s\n", s.name, truncate(msg.Content, 60))
	default:
		fmt.Printf("%s: %s\n", s.name, msg.Content)
	}
}

func (s *terminalSink) OnRecall(id string) {
	fmt.Printf("%s 撤回了一条消息\n", s.name)
}

func runLoop(ctx context.Context, svc *chat.Service, char *types.Character) error {
	sink := &terminalSink{name: char.DisplayName()}
	scanner := bufio.NewScanner(os.Stdin)
	mode := types.ModeOnline

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/exit":
			return nil
		case line == "/offline":
			if mode == types.ModeOffline {
				mode = types.ModeOnline
				fmt.Println("已切回线上模式")
			} else {
				mode = types.ModeOffline
				fmt.Println("已进入线下模式")
			}
			continue
		case line == "/summary":
			if err := svc.SummarizeOfflineSession(ctx, char.ID); err != nil {
				fmt.Printf("总结失败: %v\n", err)
			} else {
				fmt.Println("线下剧情已总结")
			}
			continue
		}

		if _, err := svc.SendUserMessage(char.ID, types.Message{Content: line, Mode: mode}); err != nil {
			return err
		}
		if err := svc.GenerateReply(ctx, char.ID, mode, sink); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Printf("生成失败: %v\n", err)
		}
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
