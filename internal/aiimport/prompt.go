package aiimport

const (
	// MaxFileBytes is the largest upload accepted for import.
	MaxFileBytes = 8 << 20
	// MaxTextChars caps text sent inline to a provider.
	MaxTextChars = 18000

	maxModelName = 120

	textPartPrefix = "Conteudo textual do arquivo:\n"
)

const outputShape = `{
  "title": "string",
  "templateId": "minimal|modern|professional|executive|creative",
  "theme": {
    "primaryColor": "#RRGGBB",
    "secondaryColor": "#RRGGBB",
    "textColor": "#RRGGBB",
    "font": "sourceSans|merriweather|montserrat",
    "spacing": "compact|comfortable",
    "fontSizeLevel": "normal|large"
  },
  "header": {
    "fullName": "string",
    "role": "string",
    "email": "string",
    "phone": "string",
    "location": "string",
    "website": "string",
    "linkedIn": "string",
    "github": "string"
  },
  "sections": [
    {
      "type": "summary|experience|education|skills|projects|certifications|languages|custom",
      "title": "string",
      "items": [
        { "text": "..." }
      ]
    }
  ]
}`

// SystemPrompt instructs the model to answer with the draft JSON only.
const SystemPrompt = `Voce analisa modelos de curriculo (imagem ou arquivo) e converte para JSON estruturado.
Responda somente com JSON valido, sem markdown, sem explicacoes.

Regras:
- Mantenha a estrutura visual inferida no templateId e no tema.
- Extraia texto fiel do modelo quando possivel.
- Nao invente experiencias detalhadas; se faltar dado, use string vazia.
- Seja conciso: evite repeticoes e limite cada campo a poucas frases.
- Sempre inclua header e sections.
- Para cada section.type, use estes campos:
  - summary: text
  - experience: role, company, startDate, endDate, location, description
  - education: degree, institution, startDate, endDate, description
  - skills: name
  - projects: name, link, description
  - certifications: name, issuer, year
  - languages: language, level
  - custom: pares chave/valor livres

Formato de saida obrigatorio:
` + outputShape

// UserInstruction accompanies the uploaded file.
const UserInstruction = "Copie fielmente a estrutura visual e textual do modelo de curriculo enviado para o formato JSON exigido. " +
	"O objetivo e permitir edicao completa no editor deste sistema sem perder o padrao do modelo."
