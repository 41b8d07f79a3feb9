package keypad

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"fincalc/internal/calculator"
	"fincalc/internal/server"
	postfixnotation "fincalc/pkg/postfix_notation"
)

type Config struct {
	ServerURI         string `json:"server_uri"`   //если пустой - http://localhost:8080
	HistoryPath       string `json:"history_path"` //по-умолчанию - /api/history
	Token             string `json:"token"`        //пустой - историю не отправляем
	MaxWorkers        int    `json:"max_workers"`  //минимум 1
	Scientific        bool   `json:"scientific"`
	Angle             string `json:"angle"`
	Locale            string `json:"locale"`
	MaxFractionDigits int    `json:"max_fraction_digits"`
	Prompt            string `json:"-"` //печатается перед каждой строкой
}

// Keypad drives a calculator.State from text input. Committed calculations
// are uploaded to the server in the background when a token is configured.
type Keypad struct {
	Config    Config
	state     *calculator.State
	formatter *calculator.Formatter
	uploads   chan calculator.Entry
	client    *http.Client
	log       *slog.Logger
}

func New(config Config, log *slog.Logger) (*Keypad, error) {
	if config.ServerURI == "" {
		config.ServerURI = "http://localhost:8080"
	}
	config.ServerURI = strings.TrimRight(config.ServerURI, "/")
	if config.HistoryPath == "" {
		config.HistoryPath = "/api/history"
	}
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 1
	}
	if config.MaxFractionDigits <= 0 {
		config.MaxFractionDigits = calculator.DefaultMaxFractionDigits
	}
	formatter, err := calculator.NewFormatter(config.Locale, config.MaxFractionDigits)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	k := &Keypad{
		Config:    config,
		formatter: formatter,
		uploads:   make(chan calculator.Entry, config.MaxWorkers),
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log,
	}
	opts := []calculator.Option{calculator.WithAngle(postfixnotation.ParseAngleMode(config.Angle))}
	if config.Scientific {
		opts = append(opts, calculator.WithScientific())
	}
	if config.Token != "" {
		opts = append(opts, calculator.WithRecorder(calculator.RecorderFunc(func(e calculator.Entry) {
			k.uploads <- e
		})))
	}
	k.state = calculator.New(opts...)
	return k, nil
}

// Run reads whitespace separated keys line by line and prints the display
// after every line. It returns when in is exhausted or ctx is cancelled,
// after pending uploads are sent. Run may be called only once.
func (k *Keypad) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	var wg sync.WaitGroup
	for range k.Config.MaxWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range k.uploads {
				if err := k.sendEntry(e); err != nil {
					k.log.Error("upload history", "entry", e.Summary(), "err", err)
				}
			}
		}()
	}
	defer func() {
		close(k.uploads)
		wg.Wait()
	}()

	lines := k.readLines(ctx, in)
	fmt.Fprint(out, k.Config.Prompt)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			keys := strings.Fields(line)
			if len(keys) == 0 {
				fmt.Fprint(out, k.Config.Prompt)
				continue
			}
			for _, key := range keys {
				if !k.state.Press(key) {
					k.log.Debug("key ignored", "key", key)
				}
			}
			if _, err := fmt.Fprintln(out, Render(k.state.View(k.formatter))); err != nil {
				return err
			}
			fmt.Fprint(out, k.Config.Prompt)
		}
	}
}

// readLines feeds input lines into the returned channel until in is
// exhausted or ctx is cancelled, then closes it.
func (k *Keypad) readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			k.log.Error("read input", "err", err)
		}
	}()
	return lines
}

// Render prints both display regions on one line.
func Render(d calculator.Display) string {
	result := d.Result
	if d.Message != "" {
		result += ": " + d.Message
	}
	return d.Expression + " | " + result
}

func (k *Keypad) sendEntry(e calculator.Entry) error {
	data := server.HistoryRequest{Expression: e.Expression, Result: e.Result}
	jsonValue, err := json.Marshal(data)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, k.Config.ServerURI+k.Config.HistoryPath, bytes.NewBuffer(jsonValue))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+k.Config.Token)

	resp, err := k.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}
