package generation

import "fmt"

// Generation parameters: biased toward factual recall over creativity.
const (
	temperature     = 0.1
	maxOutputTokens = 2000

	// maxHistoryTurns caps how much prior conversation travels with each
	// request.
	maxHistoryTurns = 6
)

// systemPrompt fixes the assistant persona and the grounding rules. Both
// providers get this verbatim; only the attachment channel differs.
const systemPrompt = `You are an expert Dublin City Council planning permission assistant. You have access to a database of real planning applications from Dublin City Council, covering applications from 2003 to the present day.

Your role is to answer questions about Dublin planning applications accurately using ONLY the planning records provided to you. Follow these rules:

1. ONLY use information from the provided planning records. Do not make up or hallucinate planning references, addresses, or decisions.
2. When referencing specific applications, always cite the planning reference number (e.g., "Ref: 2458/24").
3. If the provided records don't contain enough information to fully answer the question, say so honestly and explain what information you do have.
4. When listing applications, format them clearly with reference number, location, proposal summary, and decision status.
5. For questions about trends or patterns, summarize what the data shows.
6. If asked about zoning or development plan policies, note that you have access to planning application records but not the full Development Plan text; recommend checking dublincity.ie for zoning specifics.
7. Be precise with dates and decisions. Don't guess about outcomes.
8. You cover Dublin City Council area only (Dublin 1-24 roughly, not Fingal, DLR, or South Dublin).

Remember: You are providing factual information from real public records. Be helpful, accurate, and thorough.`

// userMessage builds the final user turn: the question plus the full
// retrieved context, verbatim.
func userMessage(query, contextBlock string) string {
	return fmt.Sprintf(`Based on the following Dublin City Council planning records, please answer this question:

**Question:** %s

**Retrieved Planning Records:**
%s

Please provide a clear, accurate answer based on these records. Cite specific planning reference numbers where relevant.`, query, contextBlock)
}

// capHistory keeps only the most recent turns.
func capHistory(history []Turn) []Turn {
	if len(history) > maxHistoryTurns {
		return history[len(history)-maxHistoryTurns:]
	}
	return history
}
