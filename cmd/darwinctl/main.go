// darwinctl sends one call to a Darwin filter and prints the outcome.
//
// Usage:
//
//	darwinctl -config darwin.toml -filter dga -response back example.com
//	darwinctl -config darwin.toml -filter reputation -response back -bulk "1.2.3.4,TOR" "1.2.3.5,TOR"
//
// In bulk mode every positional argument is one comma-separated
// argument list; otherwise the positional arguments form a single list.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	darwin "github.com/openaegis/darwin-go"
	"github.com/openaegis/darwin-go/internal/logging"
	"github.com/openaegis/darwin-go/protocol"
)

func main() {
	configPath := flag.String("config", "darwin.toml", "endpoint config file")
	filter := flag.String("filter", "no", "filter name or numeric code (0x-prefixed hex accepted)")
	response := flag.String("response", "back", "response type: no, back, darwin, both")
	packet := flag.String("type", "other", "packet type: other, filter")
	bulk := flag.Bool("bulk", false, "treat each positional argument as its own comma-separated argument list")
	flag.Parse()

	log := logging.New("darwinctl")

	cfg, err := loadEndpointConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "darwinctl: %v\n", err)
		os.Exit(1)
	}

	spec, err := buildSpec(*filter, *response, *packet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "darwinctl: %v\n", err)
		os.Exit(1)
	}

	client, err := darwin.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "darwinctl: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if *bulk {
		data := make([][]string, 0, flag.NArg())
		for _, arg := range flag.Args() {
			data = append(data, strings.Split(arg, ","))
		}
		result, err := client.BulkCall(data, spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "darwinctl: %v\n", err)
			os.Exit(1)
		}
		log.Info().
			Str("event_id", result.EventID).
			Uints32("certitudes", result.Certitudes).
			Str("body", strings.TrimRight(result.Body, "\n")).
			Msg("bulk call done")
		return
	}

	result, err := client.Call(flag.Args(), spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "darwinctl: %v\n", err)
		os.Exit(1)
	}
	event := log.Info().Str("event_id", result.EventID)
	if result.Answered {
		event = event.Uint32("certitude", result.Certitude)
	}
	event.Msg("call done")
}

func buildSpec(filter, response, packet string) (darwin.CallSpec, error) {
	spec := darwin.CallSpec{}

	responseType, err := protocol.ParseResponseType(response)
	if err != nil {
		return darwin.CallSpec{}, err
	}
	spec.ResponseType = responseType

	packetType, err := protocol.ParsePacketType(packet)
	if err != nil {
		return darwin.CallSpec{}, err
	}
	spec.PacketType = packetType

	if code, err := strconv.ParseInt(filter, 0, 64); err == nil {
		spec.FilterCode = code
	} else {
		spec.FilterName = filter
	}
	return spec, nil
}
