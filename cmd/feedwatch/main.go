// Package main provides a load and smoke testing tool for the feed WebSocket.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	PostsSubmitted       int64
	EventsReceived       int64
	Errors               int64
}

var metrics Metrics

type feedEvent struct {
	Type string `json:"type"`
	Post struct {
		ID         uint      `json:"id"`
		AuthorName string    `json:"authorName"`
		Text       string    `json:"text"`
		Date       time.Time `json:"date"`
	} `json:"post"`
}

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	login := flag.String("login", "", "Login used to submit posts (empty to only watch)")
	password := flag.String("password", "Password123!", "Password for -login")
	clients := flag.Int("clients", 1, "Number of concurrent watchers")
	postEvery := flag.Duration("post-every", 0, "Submit a post at this interval (requires -login)")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	verbose := flag.Bool("v", true, "Print every received event")
	flag.Parse()

	log.Printf("🚀 Starting Feed Watch")
	log.Printf("Target: %s", *host)
	log.Printf("Watchers: %d", *clients)
	log.Printf("Duration: %v", *duration)

	var token string
	if *login != "" {
		var err error
		token, err = authorize(*host, *login, *password)
		if err != nil {
			log.Fatalf("❌ Authorization failed: %v", err)
		}
		log.Printf("✅ Authorized as %s", *login)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runWatcher(*host, i, *verbose && i == 0, stopChan, &wg)
		time.Sleep(50 * time.Millisecond)
	}

	if token != "" && *postEvery > 0 {
		wg.Add(1)
		go runPoster(*host, *login, token, *postEvery, stopChan, &wg)
	}

	select {
	case <-time.After(*duration):
		log.Println("⏱️  Test duration reached")
	case <-interrupt:
		log.Println("🛑 Interrupted by user")
	}

	close(stopChan)
	log.Println("Waiting for watchers to disconnect...")
	wg.Wait()

	printMetrics()
}

func authorize(host, login, password string) (string, error) {
	authURL := fmt.Sprintf("http://%s/User/Authorize", host)
	body, _ := json.Marshal(map[string]string{
		"login":    login,
		"password": password,
	})

	resp, err := http.Post(authURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("authorize failed with status %d", resp.StatusCode)
	}

	token := resp.Header.Get("X-Auth-Token")
	if token == "" {
		return "", fmt.Errorf("authorize response carried no X-Auth-Token")
	}
	return token, nil
}

func submitPost(client *http.Client, host, login, token, text string) error {
	body, _ := json.Marshal(map[string]any{
		"login":  login,
		"text":   text,
		"images": []string{},
	})
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/Content", host), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("submit failed with status %d", resp.StatusCode)
	}
	return nil
}

func runPoster(host, login, token string, every time.Duration, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for n := 1; ; n++ {
		select {
		case <-stopChan:
			return
		case <-ticker.C:
			text := fmt.Sprintf("feedwatch post #%d at %s", n, time.Now().Format(time.RFC3339))
			if err := submitPost(client, host, login, token, text); err != nil {
				log.Printf("⚠️  %v", err)
				atomic.AddInt64(&metrics.Errors, 1)
				continue
			}
			atomic.AddInt64(&metrics.PostsSubmitted, 1)
		}
	}
}

func runWatcher(host string, id int, verbose bool, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	u := url.URL{Scheme: "ws", Host: host, Path: "/ws/feed"}

	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		log.Printf("watcher %d: dial failed: %v", id, err)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&metrics.EventsReceived, 1)
			if !verbose {
				continue
			}
			var ev feedEvent
			if err := json.Unmarshal(raw, &ev); err != nil || ev.Type != "post_created" {
				log.Printf("📨 %s", raw)
				continue
			}
			log.Printf("📨 #%d by %s at %s: %s", ev.Post.ID, ev.Post.AuthorName,
				ev.Post.Date.Format(time.RFC3339), ev.Post.Text)
		}
	}()

	select {
	case <-stopChan:
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	case <-done:
		atomic.AddInt64(&metrics.Errors, 1)
	}
}

func printMetrics() {
	log.Println("\n📊 Test Results")
	log.Println("===============")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Posts Submitted: %d", atomic.LoadInt64(&metrics.PostsSubmitted))
	log.Printf("Events Received: %d", atomic.LoadInt64(&metrics.EventsReceived))
	log.Printf("Total Errors: %d", atomic.LoadInt64(&metrics.Errors))
}
