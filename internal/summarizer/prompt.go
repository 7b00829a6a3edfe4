package summarizer

import "fmt"

const systemInstruction = "Eres un asistente que analiza conversaciones y produce resúmenes estructurados en JSON. " +
	"Responde únicamente con un objeto JSON válido, sin texto adicional."

// The prompt fixes the product's voice: it reports what was said and never
// judges the call or the person's well-being.
const summaryPrompt = `Analiza la transcripción de una llamada de acompañamiento a una persona mayor.

TRANSCRIPCIÓN:
%s

DURACIÓN: %d segundos
NOMBRE: %s

Escribe un resumen INFORMATIVO, no valorativo, como un objeto JSON con exactamente esta estructura:

{
  "temas_conversados": [
    "Temas que se trataron, descritos de forma neutral"
  ],
  "momentos_destacados": [
    "Anécdotas, recuerdos o cosas que la persona compartió por iniciativa propia"
  ],
  "estado_animo": "Descripción breve y objetiva de cómo se encontraba (tranquila, animada, nostálgica...)",
  "temas_futuros": [
    "Temas que quedaron abiertos o de los que dijo que le gustaría hablar más adelante"
  ]
}

REGLAS:
- NO emitas juicios ni valoraciones ("estuvo bien", "muy positivo", "preocupante").
- Sé DESCRIPTIVO: "Habló de su nieta, que viene a verla este fin de semana" y no "Tiene buena relación familiar".
- Usa las palabras y expresiones de la propia persona.
- Si una sección no tiene información, devuelve un array vacío [].
- Devuelve SOLO el JSON.`

func buildPrompt(transcript string, durationSeconds int, displayName string) string {
	return fmt.Sprintf(summaryPrompt, transcript, durationSeconds, displayName)
}
