// Package openairealtime is a client for the OpenAI Realtime API over
// WebSocket.
//
// A session is a typed, bidirectional event stream. Connect waits for
// session.created, then the caller sends client events and receives server
// events, either by pulling them with Recv or Events, or by pushing them
// through a Handler with Run.
//
//	auth, err := openai.FromEnv()
//	if err != nil {
//	    return err
//	}
//	client := openairealtime.NewClient(auth)
//	session, err := client.Connect(ctx, &openairealtime.ConnectConfig{
//	    Model: openairealtime.ModelGPT4oRealtimePreview,
//	    Session: (&openairealtime.SessionConfig{}).
//	        WithModalities(openairealtime.ModalityText).
//	        WithManualTurns(),
//	})
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	if err := session.SendText("Hello"); err != nil {
//	    return err
//	}
//	if err := session.CreateResponse(nil); err != nil {
//	    return err
//	}
//	for ev, err := range session.Events(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    switch ev.Type {
//	    case openairealtime.EventTypeResponseTextDelta:
//	        fmt.Print(ev.Delta)
//	    case openairealtime.EventTypeResponseDone:
//	        return nil
//	    }
//	}
//
// # Turn taking
//
// With server or semantic VAD the server decides when the user has finished
// speaking; stream audio with AppendAudio and wait for response events.
// With manual turns, call CommitAudio and then CreateResponse.
//
// # Interruption
//
// CancelResponse stops the in-flight response; the server finishes it with
// response.done in status cancelled, and deltas for it that arrive later
// are dropped. TruncateItem tells the model how much assistant audio the
// user actually heard.
//
// # Errors
//
// Errors use the classification of package openai: openai.KindOf reports
// config, transport, codec or api. Server error events are delivered like
// any other event and do not end the stream.
package openairealtime
