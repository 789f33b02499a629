// Command scan is the capture-side flow as a CLI: normalize a photo,
// call the relay, review the draft. One request per invocation, no
// retries.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"vinscan-service/internal/domain/vehicle"
	"vinscan-service/internal/gateway"
	"vinscan-service/internal/imaging"
	"vinscan-service/internal/service"
)

func main() {
	var (
		server   = flag.String("server", "http://localhost:8080", "relay base URL")
		imageArg = flag.String("image", "", "path to the photo to scan")
		modeArg  = flag.String("mode", "vin", "scan mode: vin or carte_grise")
		business = flag.String("business", "VO", "business type: VN or VO")
	)
	flag.Parse()

	if *imageArg == "" {
		fmt.Fprintln(os.Stderr, "usage: scan -image photo.jpg [-mode vin|carte_grise] [-business VN|VO]")
		os.Exit(2)
	}

	f, err := os.Open(*imageArg)
	if err != nil {
		fatal(err.Error())
	}
	defer f.Close()

	normalized, err := imaging.Normalize(f)
	if err != nil {
		fatal(err.Error())
	}
	fmt.Fprintf(os.Stderr, "image normalized to %dx%d\n", normalized.Width, normalized.Height)

	mode := vehicle.ParseScanMode(*modeArg)
	client := gateway.New(*server)
	result, err := client.Extract(context.Background(), normalized.Base64, mode, vehicle.BusinessType(*business), normalized.MimeType)
	if err != nil {
		fatal(gateway.Message(err))
	}

	if result.Error != "" {
		fatal(result.Error)
	}
	if missing := service.MissingFields(result, mode); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "warning: model omitted %s; complete the draft by hand\n", strings.Join(missing, ", "))
	}

	draft := service.MakeDraft(result)
	out, _ := json.MarshalIndent(draft, "", "  ")
	fmt.Println(string(out))
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "error:", msg)
	os.Exit(1)
}
