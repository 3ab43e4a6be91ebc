// Package transports defines the contract shared by the realtime API
// transports and the connection state machine behind it.
//
// A [Transport] hides one of two network mechanisms, a persistent
// websocket or a negotiated WebRTC data channel, behind the same
// connect/disconnect/send surface plus four independent broadcast streams:
// connection-state changes, errors, binary messages and text messages. Any
// number of consumers may subscribe to a stream without consuming each
// other's values; closing the transport closes all four.
//
// Connection state advances monotonically per attempt:
//
//	disconnected → connecting → connected → data channel opened
//
// and only returns to disconnected on teardown. Protocol events flow once
// the data channel is open; "connected" may precede that milestone (the
// peer transport reaches it when negotiation completes, before its data
// channel opens).
package transports
