package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/codevector/internal/config"
	"github.com/Aman-CERP/codevector/internal/indexer"
	"github.com/Aman-CERP/codevector/internal/output"
	"github.com/Aman-CERP/codevector/internal/service"
)

func newIndexCmd() *cobra.Command {
	var (
		uid      string
		username string
		password string
		token    string
	)

	cmd := &cobra.Command{
		Use:   "index <path-or-git-url>",
		Short: "Index a local directory or remote git repo without going through the HTTP façade",
		Long: `index drives the same bounded per-file pipeline as
POST /vector/upsert_index (for a local path) or POST /git/clone_and_index
(for a git URL) directly, for one-off indexing runs that don't need a
running server.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			target := "."
			if len(args) > 0 {
				target = args[0]
			}
			return runIndex(cobraCmd.Context(), target, uid, username, password, token)
		},
	}

	cmd.Flags().StringVar(&uid, "uid", "local", "owner id the repo_id is derived from")
	cmd.Flags().StringVar(&username, "username", "", "git username, for a git URL target")
	cmd.Flags().StringVar(&password, "password", "", "git password, for a git URL target")
	cmd.Flags().StringVar(&token, "token", "", "git access token, for a git URL target")
	return cmd
}

func isGitURL(target string) bool {
	return strings.Contains(target, "://") || strings.HasPrefix(target, "git@")
}

func runIndex(ctx context.Context, target, uid, username, password, token string) error {
	out := output.New(os.Stdout)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc, err := service.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	if isGitURL(target) {
		out.Statusf("", "cloning and indexing %s", target)
		repoID, fileCount, err := svc.Indexer.CloneAndIndex(ctx, indexer.GitCloneRequest{
			UID:         uid,
			RepoURL:     target,
			Username:    username,
			Password:    password,
			AccessToken: token,
		})
		if err != nil {
			out.Errorf("index failed: %v", err)
			return err
		}
		out.Successf("indexed %d file(s) into repo %s", fileCount, repoID)
		return nil
	}

	absPath, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("access path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", absPath)
	}

	out.Statusf("", "indexing %s", absPath)
	repoID, fileCount, err := svc.Indexer.IndexLocalPath(ctx, uid, absPath)
	if err != nil {
		out.Errorf("index failed: %v", err)
		return err
	}

	out.Successf("indexed %d file(s) into repo %s", fileCount, repoID)
	return nil
}
