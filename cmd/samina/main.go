package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"samina/cmd/samina/tui"
	"samina/internal/assistant"
	"samina/internal/backend"
	"samina/internal/config"
	"samina/internal/filter"
	"samina/internal/logging"
	"samina/internal/session"
	"samina/internal/store"
	"samina/internal/types"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "samina",
	Short: "Samina - a publishing desk for your terminal",
	Long: `Samina is a content-publishing client: browse and search posts,
publish and edit your own, like and comment, and chat with the Lumina AI
assistant, all without leaving the terminal.

Run without arguments to start the interactive interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "samina" && cmd.CalledAs() == "samina" {
			return nil
		}

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// initCmd writes a starter configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Writes the default configuration to ~/.samina/config.yaml (or the
path given with --config). Fill in backend.url, backend.anon_key, and
ai.api_key afterwards, or supply them via SAMINA_BACKEND_URL,
SAMINA_ANON_KEY, and GEMINI_API_KEY.`,
	RunE: runInit,
}

// loginCmd exchanges credentials for an access token
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and print the session access token",
	Long: `Signs in with the given credentials and prints the access token.
Sessions are not stored on disk: put the token in backend.access_token
or SAMINA_ACCESS_TOKEN so later commands run authorized.`,
	RunE: runLogin,
}

// logoutCmd revokes the configured session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the configured session token",
	RunE:  runLogout,
}

// postsCmd lists posts
var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List posts, optionally filtered",
	Long: `Lists all posts, newest first. Both filters are applied together:
--category keeps one category, --search keeps posts whose title or
excerpt contains the text (case-insensitive).`,
	RunE: runPosts,
}

// publishCmd publishes a new post
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a new post",
	Long: `Publishes a post as the signed-in user. The excerpt is derived from
the content automatically.

Example:
  samina publish --title "Deep Sea Vents" --category SCIENCE --file post.md`,
	RunE: runPublish,
}

// likeCmd likes a post
var likeCmd = &cobra.Command{
	Use:   "like [post-id]",
	Short: "Like a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runLike,
}

// commentCmd comments on a post
var commentCmd = &cobra.Command{
	Use:   "comment [post-id] [text...]",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runComment,
}

// deleteCmd deletes a post
var deleteCmd = &cobra.Command{
	Use:   "delete [post-id]",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// askCmd sends one message to the assistant
var askCmd = &cobra.Command{
	Use:   "ask [message...]",
	Short: "Ask the Lumina assistant a question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

// analyzeCmd analyzes an image file
var analyzeCmd = &cobra.Command{
	Use:   "analyze [image-path]",
	Short: "Analyze an image with the Lumina assistant",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

// statusCmd shows configuration status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Samina configuration status",
	RunE:  runStatus,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.samina/config.yaml)")

	loginCmd.Flags().String("email", "", "Account email (required)")
	loginCmd.Flags().String("password", "", "Account password (required)")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	postsCmd.Flags().String("category", "", "Filter by category (ART, SCIENCE, TECHNOLOGY, CINEMA, DESIGN, FOOD)")
	postsCmd.Flags().String("search", "", "Filter by title/excerpt text")

	publishCmd.Flags().String("title", "", "Post title (required)")
	publishCmd.Flags().String("category", "", "Post category (required)")
	publishCmd.Flags().String("content", "", "Post content")
	publishCmd.Flags().String("file", "", "Read post content from a file")
	publishCmd.Flags().String("thumbnail", "", "Thumbnail URL (a placeholder is assigned when omitted)")
	publishCmd.MarkFlagRequired("title")
	publishCmd.MarkFlagRequired("category")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(postsCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// =============================================================================
// WIRING
// =============================================================================

// app bundles the assembled core for one command invocation.
type app struct {
	cfg      *config.Config
	client   *backend.Client
	sessions *session.Manager
	posts    *store.Store
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultUserConfigPath()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Initialize(config.UserDir(), logging.Options{
		DebugMode:  cfg.Logging.DebugMode,
		Level:      cfg.Logging.Level,
		Categories: cfg.Logging.Categories,
	})
	return cfg, nil
}

// buildApp assembles the gateway, session manager, and post store, and
// restores any configured session.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.AnonKey, cfg.GetBackendTimeout())
	client.SetAccessToken(cfg.Backend.AccessToken)

	sessions := session.NewManager(client)
	if err := sessions.Init(ctx); err != nil {
		return nil, fmt.Errorf("session restore failed: %w", err)
	}

	return &app{
		cfg:      cfg,
		client:   client,
		sessions: sessions,
		posts:    store.New(client, sessions),
	}, nil
}

func buildAssistant(ctx context.Context, cfg *config.Config) (*assistant.Assistant, error) {
	if !cfg.HasAssistant() {
		return nil, fmt.Errorf("assistant not configured (set ai.api_key or GEMINI_API_KEY)")
	}
	return assistant.New(ctx, cfg.AI.APIKey, cfg.AI.Model)
}

// runInteractive launches the TUI.
func runInteractive() error {
	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}

	// The assistant is optional in the TUI; the sidebar explains how to
	// configure it when missing.
	var assist *assistant.Assistant
	if a.cfg.HasAssistant() {
		assist, err = assistant.New(ctx, a.cfg.AI.APIKey, a.cfg.AI.Model)
		if err != nil {
			return err
		}
	}

	defer logging.CloseAll()
	return tui.Run(a.posts, a.sessions, assist)
}

// =============================================================================
// COMMANDS
// =============================================================================

func runInit(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath()
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config already exists at %s\n", path)
		return nil
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	logger.Info("Wrote starter config", zap.String("path", path))
	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Fill in backend.url, backend.anon_key, and ai.api_key to get started.")
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	user, err := a.sessions.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	logger.Info("Signed in", zap.String("email", user.Email))

	fmt.Printf("Signed in as %s <%s>\n", user.Name, user.Email)
	fmt.Println("\nSessions are not stored on disk. To stay signed in, export:")
	fmt.Printf("  export SAMINA_ACCESS_TOKEN=%s\n", a.client.AccessToken())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	if a.sessions.Current() == nil {
		fmt.Println("No session configured.")
		return nil
	}
	if err := a.sessions.SignOut(ctx); err != nil {
		return err
	}
	fmt.Println("Signed out. Remove SAMINA_ACCESS_TOKEN from your environment.")
	return nil
}

func runPosts(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	if err := a.posts.Refresh(ctx); err != nil {
		return err
	}

	categoryFlag, _ := cmd.Flags().GetString("category")
	search, _ := cmd.Flags().GetString("search")

	category := filter.CategoryAll
	if categoryFlag != "" {
		category = types.Category(strings.ToUpper(categoryFlag))
		if !category.Valid() {
			return fmt.Errorf("unknown category %q", categoryFlag)
		}
	}

	posts := filter.Visible(a.posts.Posts(), category, search)
	if len(posts) == 0 {
		fmt.Println("No posts match.")
		return nil
	}

	for _, p := range posts {
		fmt.Printf("%s  [%s]  %s\n", p.ID, p.Category, p.Title)
		fmt.Printf("    %s · %s · ♥ %d · %d comments\n",
			p.AuthorName, p.CreatedAt.Format("2006-01-02"), p.Likes, len(p.Comments))
		fmt.Printf("    %s\n", p.Excerpt)
	}
	return nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	categoryFlag, _ := cmd.Flags().GetString("category")
	content, _ := cmd.Flags().GetString("content")
	file, _ := cmd.Flags().GetString("file")
	thumbnail, _ := cmd.Flags().GetString("thumbnail")

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read content file: %w", err)
		}
		content = string(data)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("post content is required (use --content or --file)")
	}

	category := types.Category(strings.ToUpper(categoryFlag))
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", categoryFlag)
	}

	draft := types.Draft{
		Title:     title,
		Content:   content,
		Category:  category,
		Thumbnail: thumbnail,
	}
	if err := a.posts.Create(ctx, draft); err != nil {
		if err == store.ErrSignInRequired {
			return fmt.Errorf("sign in first: samina login --email ... --password ...")
		}
		return err
	}

	logger.Info("Published post", zap.String("title", title))
	fmt.Printf("Published %q\n", title)
	return nil
}

func runLike(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	if err := a.posts.Refresh(ctx); err != nil {
		return err
	}

	if err := a.posts.Like(ctx, args[0]); err != nil {
		if err == store.ErrSignInRequired {
			return fmt.Errorf("sign in first: samina login --email ... --password ...")
		}
		return err
	}

	post, _ := a.posts.Get(args[0])
	fmt.Printf("♥ %d\n", post.Likes)
	return nil
}

func runComment(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	if a.sessions.Current() == nil {
		return fmt.Errorf("sign in first: samina login --email ... --password ...")
	}

	postID := args[0]
	content := strings.Join(args[1:], " ")
	if err := a.posts.Comment(ctx, postID, content); err != nil {
		return err
	}
	fmt.Println("Comment posted.")
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}

	if err := a.posts.Delete(ctx, args[0]); err != nil {
		if err == store.ErrSignInRequired {
			return fmt.Errorf("sign in first: samina login --email ... --password ...")
		}
		return err
	}

	logger.Info("Deleted post", zap.String("id", args[0]))
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	assist, err := buildAssistant(ctx, cfg)
	if err != nil {
		return err
	}

	message := strings.Join(args, " ")
	fmt.Println(assist.Chat(ctx, message, nil))
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	assist, err := buildAssistant(ctx, cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	mimeType := "image/jpeg"
	switch strings.ToLower(filepath.Ext(args[0])) {
	case ".png":
		mimeType = "image/png"
	case ".gif":
		mimeType = "image/gif"
	case ".webp":
		mimeType = "image/webp"
	}

	fmt.Println(assist.AnalyzeImage(ctx, data, mimeType))
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("Samina Status")
	fmt.Println("=============")

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return err
	}

	if cfg.Backend.URL != "" {
		fmt.Printf("✓ Backend: %s\n", cfg.Backend.URL)
	} else {
		fmt.Println("✗ Backend URL not configured")
	}
	if cfg.Backend.AnonKey != "" {
		fmt.Println("✓ Anon key configured")
	} else {
		fmt.Println("✗ Anon key not configured")
	}
	if cfg.Backend.AccessToken != "" {
		fmt.Println("✓ Access token configured (session restores at startup)")
	} else {
		fmt.Println("✗ No access token (browsing anonymously)")
	}
	if cfg.HasAssistant() {
		fmt.Printf("✓ Assistant: %s\n", cfg.AI.Model)
	} else {
		fmt.Println("✗ Assistant API key not configured")
	}
	return nil
}
