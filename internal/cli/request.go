// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/gogama/reqflow"
	"github.com/gogama/reqflow/cancel"
	"github.com/gogama/reqflow/interceptor"
	"github.com/gogama/reqflow/internal/cliconfig"
	"github.com/gogama/reqflow/internal/history"
	"github.com/gogama/reqflow/request"
	"github.com/gogama/reqflow/transport"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

func newRequestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request URL",
		Short: "Send a request and print the response body",
		Args:  cobra.ExactArgs(1),
		RunE:  runRequest,
	}
	cmd.Flags().StringP("method", "X", "", "Request method (default GET)")
	cmd.Flags().StringArrayP("header", "H", nil, "Header field (repeatable, e.g., -H 'X-Custom: value')")
	cmd.Flags().StringP("data", "d", "", "Request body")
	cmd.Flags().Bool("json", false, "Send --data as JSON")
	cmd.Flags().StringArray("param", nil, "Query parameter (repeatable, e.g., --param id=1)")
	cmd.Flags().Duration("timeout", 0, "Request timeout (overrides the defaults file)")
	cmd.Flags().Float64("rate", 0, "Maximum requests per second (overrides the defaults file)")
	cmd.Flags().String("request-id", "", "Header to send a fresh request ID in (overrides the defaults file)")
	cmd.Flags().BoolP("include", "i", false, "Print the response status and header")
	return cmd
}

func runRequest(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	file, err := loadFile(cmd)
	if err != nil {
		return err
	}
	if flags.Changed("rate") {
		file.Rate, _ = flags.GetFloat64("rate")
	}
	if flags.Changed("request-id") {
		file.RequestIDHeader, _ = flags.GetString("request-id")
	}

	client, closeClient, err := newClient(cmd, file)
	if err != nil {
		return err
	}
	defer closeClient()

	cfg, err := requestConfig(cmd, args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	token, cancelFunc := cancel.Source()
	go func() {
		<-ctx.Done()
		cancelFunc("interrupted")
	}()
	cfg.CancelToken = token
	cfg = cfg.WithContext(ctx)

	resp, err := client.Do(cfg)
	var rerr *request.Error
	if errors.As(err, &rerr) && rerr.Response != nil {
		resp = rerr.Response
	}
	if resp != nil {
		include, _ := flags.GetBool("include")
		if perr := printResponse(cmd.OutOrStdout(), resp, include); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

func loadFile(cmd *cobra.Command) (*cliconfig.File, error) {
	path, _ := cmd.Flags().GetString("config")
	file, err := cliconfig.Load(path)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("history") {
		file.History, _ = cmd.Flags().GetString("history")
	}
	return file, nil
}

func newClient(cmd *cobra.Command, file *cliconfig.File) (*reqflow.Client, func(), error) {
	defaults, err := file.Config()
	if err != nil {
		return nil, nil, err
	}
	client := reqflow.New(defaults)

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	if verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	client.Logger = logger

	jar, err := transport.NewJar()
	if err != nil {
		return nil, nil, err
	}
	t := &transport.HTTP{Doer: &http.Client{Jar: jar}}
	if file.BaseURL != "" {
		if origin, perr := url.Parse(file.BaseURL); perr == nil && origin.IsAbs() {
			t.Origin = &url.URL{Scheme: origin.Scheme, Host: origin.Host}
			t.Cookies = transport.JarCookies(jar, t.Origin)
		}
	}
	client.Transport = t

	if file.Rate > 0 {
		client.Interceptors.Request.Use(interceptor.RateLimit(rate.NewLimiter(rate.Limit(file.Rate), 1)), nil)
	}
	if file.RequestIDHeader != "" {
		client.Interceptors.Request.Use(interceptor.RequestID(file.RequestIDHeader), nil)
	}

	closeClient := func() {}
	if file.History != "" {
		store, err := history.Open(file.History)
		if err != nil {
			return nil, nil, err
		}
		client.Interceptors.Response.Use(store.Recorder(func(err error) {
			logger.Warn("failed to record history", "err", err)
		}))
		closeClient = func() {
			_ = store.Close()
		}
	}
	return client, closeClient, nil
}

func requestConfig(cmd *cobra.Command, rawURL string) (*request.Config, error) {
	flags := cmd.Flags()
	cfg := &request.Config{URL: rawURL}

	method, _ := flags.GetString("method")
	cfg.Method = request.Method(method)
	if !cfg.Method.Valid() {
		return nil, fmt.Errorf("invalid method %q", method)
	}

	headers, _ := flags.GetStringArray("header")
	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		if cfg.Header == nil {
			cfg.Header = request.NewHeader()
		}
		cfg.Header.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	params, _ := flags.GetStringArray("param")
	if len(params) > 0 {
		values := url.Values{}
		for _, p := range params {
			k, v, ok := strings.Cut(p, "=")
			if !ok {
				return nil, fmt.Errorf("invalid param %q, expected key=value", p)
			}
			values.Add(k, v)
		}
		cfg.Params = values
	}

	if flags.Changed("data") {
		data, _ := flags.GetString("data")
		asJSON, _ := flags.GetBool("json")
		if asJSON {
			var v interface{}
			if err := json.Unmarshal([]byte(data), &v); err != nil {
				return nil, fmt.Errorf("invalid JSON data: %w", err)
			}
			cfg.Data = v
		} else {
			cfg.Data = data
		}
		if cfg.Method == "" {
			cfg.Method = request.Post
		}
	}

	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	return cfg, nil
}

func printResponse(w io.Writer, resp *request.Response, include bool) error {
	if include {
		fmt.Fprintf(w, "%d %s\n", resp.Status, strings.TrimSpace(strings.TrimPrefix(resp.StatusText, fmt.Sprint(resp.Status))))
		keys := make([]string, 0, len(resp.Header))
		for k := range resp.Header {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, v := range resp.Header[k] {
				fmt.Fprintf(w, "%s: %s\n", k, v)
			}
		}
		fmt.Fprintln(w)
	}
	switch data := resp.Data.(type) {
	case nil:
		return nil
	case string:
		_, err := io.WriteString(w, data)
		return err
	case []byte:
		_, err := w.Write(data)
		return err
	default:
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}
}
