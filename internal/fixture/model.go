package fixture

// Column describes one generated column. Ref names the table whose id this
// column references; such columns get a foreign key constraint.
type Column struct {
	Name     string   `mapstructure:"name"`
	Type     string   `mapstructure:"type"`
	Nullable bool     `mapstructure:"nullable"`
	Ref      string   `mapstructure:"ref"`
	Values   []string `mapstructure:"values"` // fixed choices, for enum-like text
}

// Table is a generated table. Every table gets a leading "id uuid" primary key.
type Table struct {
	Name    string   `mapstructure:"name"`
	Columns []Column `mapstructure:"columns"`
}

// DefaultTables models the service-provider request workflow: users file
// requests, requests list providers, and changes and savings are logged
// against them.
func DefaultTables() []Table {
	return []Table{
		{
			Name: "usuarios",
			Columns: []Column{
				{Name: "nome", Type: "text"},
				{Name: "email", Type: "text"},
				{Name: "departamento", Type: "text", Values: []string{"Esportes", "Cultural", "Manutenção", "Diretoria", "Financeiro", "RH", "TI", "Recepção"}},
				{Name: "perfil", Type: "text", Values: []string{"solicitante", "aprovador", "administrador", "gestor", "recepcao", "suporte", "superadmin"}},
				{Name: "created_at", Type: "timestamp with time zone"},
			},
		},
		{
			Name: "solicitacoes",
			Columns: []Column{
				{Name: "numero", Type: "text"},
				{Name: "solicitante_id", Type: "uuid", Ref: "usuarios"},
				{Name: "tipo_solicitacao", Type: "text", Values: []string{"checagem_liberacao", "somente_liberacao"}},
				{Name: "finalidade", Type: "text", Values: []string{"evento", "obra"}},
				{Name: "local", Type: "text"},
				{Name: "empresa", Type: "text"},
				{Name: "data_inicial", Type: "date"},
				{Name: "data_final", Type: "date"},
				{Name: "status_geral", Type: "text", Values: []string{"pendente", "aprovado", "reprovado", "parcial"}},
				{Name: "observacoes_gerais", Type: "text", Nullable: true},
				{Name: "custo_checagem", Type: "numeric"},
			},
		},
		{
			Name: "prestadores",
			Columns: []Column{
				{Name: "solicitacao_id", Type: "uuid", Ref: "solicitacoes"},
				{Name: "nome", Type: "text"},
				{Name: "documento", Type: "text"},
				{Name: "documento2", Type: "text", Nullable: true},
				{Name: "empresa", Type: "text", Nullable: true},
				{Name: "status", Type: "text", Values: []string{"pendente", "aprovado", "reprovado", "excecao"}},
				{Name: "justificativa", Type: "text", Nullable: true},
			},
		},
		{
			Name: "logs_alteracao",
			Columns: []Column{
				{Name: "solicitacao_id", Type: "uuid", Ref: "solicitacoes"},
				{Name: "prestador_id", Type: "uuid", Ref: "prestadores", Nullable: true},
				{Name: "usuario_id", Type: "uuid", Ref: "usuarios"},
				{Name: "data_alteracao", Type: "timestamp with time zone"},
				{Name: "campo_alterado", Type: "text"},
				{Name: "valor_anterior", Type: "text", Nullable: true},
				{Name: "valor_novo", Type: "text", Nullable: true},
				{Name: "justificativa", Type: "text"},
			},
		},
		{
			Name: "economias_sistema",
			Columns: []Column{
				{Name: "solicitacao_id", Type: "uuid", Ref: "solicitacoes"},
				{Name: "economia_gerada", Type: "numeric"},
				{Name: "despesa_gerada", Type: "numeric"},
				{Name: "sustentavel", Type: "boolean"},
			},
		},
	}
}
