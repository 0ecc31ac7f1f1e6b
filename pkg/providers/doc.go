// Package providers groups the Gemini backends. Each sub-package implements
// [github.com/germanamz/minirag/pkg/modeladapter.Generator]:
//   - [github.com/germanamz/minirag/pkg/providers/genaisdk]: official Google Gen AI SDK (default)
//   - [github.com/germanamz/minirag/pkg/providers/gemini]: direct REST calls to generateContent
//   - [github.com/germanamz/minirag/pkg/providers/openaicompat]: Gemini's OpenAI-compatible endpoint via openai-go
package providers
