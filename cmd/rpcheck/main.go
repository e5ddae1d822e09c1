// Command rpcheck evaluates AlpineBits rate plan messages against a stay
// list and prints the report to stdout.
//
// Usage:
//
//	rpcheck -stays stays.txt plans1.xml [plans2.xml ...]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/evaluator"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/ota"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/pkg/logger"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/stays"
)

func main() {
	staysPath := flag.String("stays", "", "path to the stay list file (required)")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn, error")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s -stays stays.txt plans.xml [plans.xml ...]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if *staysPath == "" || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := logger.New(logger.Config{Level: *logLevel, Format: "text"})

	staysText, err := os.ReadFile(*staysPath)
	if err != nil {
		log.Fatal(err, "reading stay list")
	}
	stayList := stays.Parse(string(staysText))
	if len(stayList) == 0 {
		log.Fatal(nil, "no valid stays in the stay list", "file", *staysPath)
	}

	var msgs []evaluator.Message
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal(err, "reading rate plan message")
		}
		doc, err := ota.Parse(data)
		if err != nil {
			log.Fatal(err, "parsing rate plan message", "file", path)
		}
		msgs = append(msgs, evaluator.Message{Name: filepath.Base(path), Doc: doc})
	}

	res := evaluator.New(log).Evaluate(msgs, stayList)
	fmt.Print(res.Render())
}
