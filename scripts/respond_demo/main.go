// respond_demo sends a few queries to a running `reply-engine serve` and
// prints what comes back.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
)

type respondRequest struct {
	Query string `json:"query"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	flag.Parse()

	queries := flag.Args()
	if len(queries) == 0 {
		queries = []string{"hello", "how are you?", "see you tomorrow", "xyz123"}
	}

	raw, code, err := get(*baseURL + "/stats")
	if err != nil {
		panic(err)
	}
	fmt.Println("stats", code, raw)

	for _, q := range queries {
		raw, code, err := postJSON(*baseURL+"/respond", respondRequest{Query: q})
		if err != nil {
			panic(err)
		}
		fmt.Printf("respond %q %d %s", q, code, raw)
	}
}

func get(url string) (string, int, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body), resp.StatusCode, nil
}

func postJSON(url string, payload any) (string, int, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", 0, err
	}
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(b))
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body), resp.StatusCode, nil
}
