// Package realtime provides a client-side protocol layer for event-based
// sessions with a realtime conversational API.
//
// A [Client] owns one transport, either a persistent websocket or a
// negotiated WebRTC data channel, and exposes the session
// as a typed publish/subscribe event bus. Inbound wire events are decoded
// and dispatched under three routing keys: the event's own type, the
// direction wildcard "server.*", and the global wildcard "all". Outbound
// events are stamped with a generated identifier, dispatched under their
// type, "client.*" and "all" for client-side visibility, then forwarded to
// the transport.
//
// Basic usage:
//
//	client, err := realtime.NewClient(
//		realtime.WithTransportKind(transports.KindSocket),
//		realtime.WithTransportOptions(transports.WithAPIKey(apiKey)),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.On("response.audio.delta", handleAudioDelta)
//	client.On(realtime.WildcardServer, handleAnyServerEvent)
//
//	if err := client.Connect(ctx, "gpt-4o-realtime-preview", nil); err != nil {
//		log.Fatal(err)
//	}
//	err = client.Send(events.New("session.update").
//		Set("session", map[string]any{"voice": "alloy"}))
//
// Enable diagnostic event logging with [WithEventLogging]; logged payloads
// have large audio fields redacted so multi-megabyte base64 values never
// reach the logs, while the transmitted payload stays untouched.
package realtime
