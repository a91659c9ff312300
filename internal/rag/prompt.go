package rag

import "fmt"

// promptTemplate instructs the model to answer only from the supplied
// material and to admit uncertainty instead of fabricating.
const promptTemplate = `You are a helpful AI news assistant. Answer the question based only on the following context and chat history. Be concise (3-5 sentences) and factual. If unsure, say "I couldn't find recent information on this."

Previous conversation:
%s

Relevant news context:
%s

Question: %s

Helpful answer:`

func buildPrompt(history, context, question string) string {
	return fmt.Sprintf(promptTemplate, history, context, question)
}
