// Package stomp is a client engine for STOMP carried over a message oriented
// duplex transport such as a WebSocket.
//
// A Client owns one connection. Connect opens the transport and, once it is
// up, performs the STOMP handshake. Inbound frames update the connection
// status and are fanned out to listeners registered with OnEvent, OnMessage
// and OnReceipt (or the channel based Events, Messages and Receipts). All
// listener code runs on a single serial executor, never on the goroutine that
// received the frame.
//
// The transport, the reachability signal and the structured body serializer
// are collaborators supplied by the caller; see Transport, Reachability and
// Serializer. The transport/websocket and reachability packages provide ready
// made implementations.
//
//	client, err := stomp.New("wss://broker.example/ws", websocket.New(),
//		stomp.WithLogger(lg),
//		stomp.WithConnectHeaders(map[string]string{"login": "guest", "passcode": "guest"}),
//	)
//	if err != nil {
//		return err
//	}
//	client.OnMessage(func(m stomp.Message) { fmt.Println(m.Destination, m.Text) })
//	err = client.Connect(ctx, stomp.ConnectOptions{AutoReconnect: true})
package stomp
