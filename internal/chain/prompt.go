package chain

import (
	"strings"

	"github.com/AbnerMSaconi/UCDB-IA/internal/history"
)

// Sentinel is the end-of-answer marker the instruction template tells the
// model to emit. Everything from the first occurrence on is trimmed.
const Sentinel = "|end|"

// Apology is the fixed fallback when the backend produces nothing usable.
// An empty answer never reaches the caller.
const Apology = "Desculpe, não consegui gerar uma resposta."

// answerTemplate constrains the model to answer only from the supplied
// context, in the house format, and to close with the sentinel. The
// question substituted here is the caller's ORIGINAL question; the
// condensed reformulation is used for retrieval only.
const answerTemplate = `Você é UCDB, um assistente acadêmico para estudos de ensino superior.
Responda em português, com profundidade técnica e clareza didática.

Regras de Resposta:
- Responda somente com base no contexto fornecido;
- Se não souber, responda: "Desculpe, não encontrei informações sobre isso.";
- Não explique seu raciocínio nem como está formatando a resposta;
- Use linguagem formal, mas acessível, evitando jargões complexos;
- Seja conciso, mas completo, evitando respostas excessivamente longas;
- Sempre que possível, inclua exemplos práticos ou analogias;
- Estruture a resposta com parágrafos curtos e subtítulos quando necessário;
- Use listas numeradas ou com marcadores para organizar informações complexas;
- Mantenha um tom neutro e profissional;
- Se a pergunta for sobre uma disciplina, informe a qual curso ela pertence;
- Finalize sempre com: "Posso ajudar em algo mais?";
- Para finalizar a resposta pule uma linha e use "|end|" (sem aspas) para sinalizar fim de tarefa.

Histórico da conversa:
{history}

Contexto:
{context}

Pergunta:
{question}

Resposta:`

// condenseTemplate rewrites a follow-up into a standalone question so
// pronouns and ellipsis referring to earlier turns resolve before
// retrieval.
const condenseTemplate = `Dada a conversa a seguir e uma pergunta de acompanhamento, reescreva a
pergunta de acompanhamento como uma pergunta independente, em português,
preservando todos os detalhes mencionados na conversa. Responda apenas com a
pergunta reescrita.

Conversa:
{history}

Pergunta de acompanhamento:
{question}

Pergunta independente:`

func renderAnswerPrompt(turns []history.Turn, context, question string) string {
	replacer := strings.NewReplacer(
		"{history}", history.Render(turns),
		"{context}", context,
		"{question}", question,
	)
	return replacer.Replace(answerTemplate)
}

func renderCondensePrompt(turns []history.Turn, question string) string {
	replacer := strings.NewReplacer(
		"{history}", history.Render(turns),
		"{question}", question,
	)
	return replacer.Replace(condenseTemplate)
}
