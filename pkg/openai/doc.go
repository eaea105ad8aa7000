// Package openai provides a typed Go client for OpenAI and Azure OpenAI
// HTTP APIs.
//
// Each API family is a service hung off Client: Chat, Responses,
// Embeddings, Files, Batches, FineTuning, Moderations, Images, Audio,
// Models and Conversations.
//
// # Basic Usage
//
//	auth, err := openai.OpenAIFromEnv()
//	if err != nil {
//	    return err
//	}
//	client := openai.NewClient(auth)
//
//	req := openai.NewChatRequest(openai.ModelGPT4oMini, openai.UserMessage("Hi"))
//	resp, err := client.Chat.Create(ctx, req)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Content())
//
// # Azure
//
// Azure endpoints are complete deployment URLs including api-version. The
// operation path is never appended:
//
//	auth := openai.NewAzureAuth("azkey",
//	    "https://r.openai.azure.com/openai/deployments/te/embeddings?api-version=2024-08-01-preview")
//	client := openai.NewClient(auth)
//	resp, err := client.Embeddings.Create(ctx, openai.NewEmbeddingRequest("te", "foo"))
//
// # Structured Output
//
//	schema := openai.NewObject().
//	    AddProperty("location", openai.TypeString, "").
//	    AddProperty("temperature", openai.TypeNumber, "")
//	req.WithResponseFormat(openai.StructuredOutput(openai.ChatJSONSchema("weather").WithSchema(schema)))
//
// # Tool Calls
//
//	resp, err := client.Chat.Create(ctx, req)
//	if err != nil {
//	    return err
//	}
//	req.AddMessage(resp.Message())
//	for _, call := range resp.ToolCalls() {
//	    var args struct{ A, B float64 }
//	    if err := call.ParseArguments(&args); err != nil {
//	        return err
//	    }
//	    req.AddMessage(openai.NewToolMessage(fmt.Sprint(args.A+args.B), call.ID))
//	}
//	resp, err = client.Chat.Create(ctx, req)
//
// # Streaming
//
// Chat and Responses streams are iter.Seq2 iterators:
//
//	for chunk, err := range client.Chat.CreateStream(ctx, req) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(chunk.Choices[0].Delta.Content)
//	}
//
// # Error Handling
//
// Errors are one of *ConfigError, *TransportError, *CodecError or
// *APIError. KindOf classifies any wrapped error:
//
//	if e, ok := openai.AsAPIError(err); ok && e.IsRateLimit() {
//	    // back off
//	}
package openai
