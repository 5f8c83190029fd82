package memstore

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/clubbook/members-book-go/internal/domain"
)

// DemoPassword is accepted for every seeded account. The dataset exists
// for demos and offline mode, not for real authentication.
const DemoPassword = "123456"

// NewSeeded returns a store preloaded with the demo dataset: four
// members, four managed users, system metrics, three chat rooms and a
// handful of approval requests in various states.
func NewSeeded() *Store {
	s := New()
	now := time.Now()

	s.members = []domain.Member{
		{
			ID: "1", Name: "Ana Silva", Title: "CEO", Company: "TechCorp",
			Sector: "TECNOLOGIA", Hierarchy: domain.HierarchySocios,
			Expertise:   []string{"Tecnologia", "Liderança"},
			Connections: 150, IsOnline: true, Email: "ana@techcorp.com",
		},
		{
			ID: "2", Name: "Carlos Santos", Title: "CTO", Company: "InnovateHub",
			Sector: "TECNOLOGIA", Hierarchy: domain.HierarchyInfinity,
			Expertise:   []string{"Desenvolvimento", "AI"},
			Connections: 89, IsOnline: false, Email: "carlos@innovatehub.com",
		},
		{
			ID: "3", Name: "Maria Costa", Title: "Designer", Company: "CreativeStudio",
			Sector: "DESIGN", Hierarchy: domain.HierarchyDisruption,
			Expertise:   []string{"UX/UI", "Branding"},
			Connections: 67, IsOnline: true, Email: "maria@creativestudio.com",
		},
		{
			ID: "4", Name: "João Oliveira", Title: "Investidor", Company: "VentureCapital",
			Sector: "INVESTIMENTOS", Hierarchy: domain.HierarchySocios,
			Expertise:   []string{"Investimentos", "Startups"},
			Connections: 200, IsOnline: true, Email: "joao@venturecapital.com",
		},
	}

	s.profiles = map[string]domain.Profile{
		"user_001": {
			domain.FieldName:                "João Silva",
			domain.FieldEmail:               "joao@test.com",
			domain.FieldCompany:             "Silva Consultoria",
			domain.FieldIndustry:            "Consultoria",
			domain.FieldLocation:            "São Paulo, SP",
			domain.FieldBio:                 "Consultor com foco em expansão de negócios.",
			domain.FieldNegociosFechados:    30.0,
			domain.FieldValorTotalAcumulado: 700000.0,
		},
		"user_002": {
			domain.FieldName:                "Maria Santos",
			domain.FieldEmail:               "maria@test.com",
			domain.FieldCompany:             "Santos & Cia",
			domain.FieldIndustry:            "Varejo",
			domain.FieldLocation:            "Rio de Janeiro, RJ",
			domain.FieldBio:                 "Empreendedora em série.",
			domain.FieldNegociosFechados:    20.0,
			domain.FieldValorTotalAcumulado: 400000.0,
		},
		"user_003": {
			domain.FieldName:                "Pedro Costa",
			domain.FieldEmail:               "pedro@test.com",
			domain.FieldCompany:             "Costa Imóveis",
			domain.FieldIndustry:            "Imobiliário",
			domain.FieldLocation:            "Belo Horizonte, MG",
			domain.FieldBio:                 "Especialista em mercado imobiliário.",
			domain.FieldNegociosFechados:    12.0,
			domain.FieldValorTotalAcumulado: 250000.0,
		},
	}

	reviewedAt := mustParseTime("2024-01-12T15:30:00Z")
	s.approvals = map[string]*domain.ApprovalRequest{
		"req_001": {
			ID: "req_001", UserID: "user_001", UserName: "João Silva",
			UserEmail:   "joao@test.com",
			RequestType: domain.RequestTypeProfileUpdate,
			RequestedChanges: domain.Profile{
				domain.FieldNegociosFechados:    45.0,
				domain.FieldValorTotalAcumulado: 850000.0,
			},
			CurrentValues: domain.Profile{
				domain.FieldNegociosFechados:    30.0,
				domain.FieldValorTotalAcumulado: 700000.0,
			},
			Justification: "Fechei 15 novos negócios no último trimestre, totalizando R$ 150.000 em valor adicional.",
			Status:        domain.ApprovalPending,
			CreatedAt:     mustParseTime("2024-01-15T10:30:00Z"),
		},
		"req_002": {
			ID: "req_002", UserID: "user_002", UserName: "Maria Santos",
			UserEmail:   "maria@test.com",
			RequestType: domain.RequestTypeProfileUpdate,
			RequestedChanges: domain.Profile{
				domain.FieldNegociosFechados:    25.0,
				domain.FieldValorTotalAcumulado: 500000.0,
			},
			CurrentValues: domain.Profile{
				domain.FieldNegociosFechados:    20.0,
				domain.FieldValorTotalAcumulado: 400000.0,
			},
			Justification: "Atualizando meus números após fechamento de contratos importantes.",
			Status:        domain.ApprovalPending,
			CreatedAt:     mustParseTime("2024-01-14T14:20:00Z"),
		},
		"req_003": {
			ID: "req_003", UserID: "user_003", UserName: "Pedro Costa",
			UserEmail:   "pedro@test.com",
			RequestType: domain.RequestTypeProfileUpdate,
			RequestedChanges: domain.Profile{
				domain.FieldBio: "Especialista em mercado imobiliário de alto padrão.",
			},
			CurrentValues: domain.Profile{
				domain.FieldBio: "Especialista em mercado imobiliário.",
			},
			Justification: "Atualizando minha descrição profissional.",
			Status:        domain.ApprovalPending,
			CreatedAt:     mustParseTime("2024-01-13T09:15:00Z"),
		},
		"req_004": {
			ID: "req_004", UserID: "user_004", UserName: "Ana Oliveira",
			UserEmail:   "ana@test.com",
			RequestType: domain.RequestTypeProfileUpdate,
			RequestedChanges: domain.Profile{
				domain.FieldNegociosFechados:    35.0,
				domain.FieldValorTotalAcumulado: 600000.0,
			},
			CurrentValues: domain.Profile{
				domain.FieldNegociosFechados:    30.0,
				domain.FieldValorTotalAcumulado: 500000.0,
			},
			Justification:  "Atualização dos números após trimestre.",
			Status:         domain.ApprovalApproved,
			CreatedAt:      mustParseTime("2024-01-10T11:00:00Z"),
			ReviewedAt:     &reviewedAt,
			ReviewedBy:     "admin@test.com",
			ReviewComments: "Aprovado - documentação adequada.",
		},
	}

	s.users = []domain.AdminUser{
		{
			ID: "1", Name: "Ana Silva", Email: "ana.silva@email.com",
			Tier: domain.HierarchySocios, Status: domain.StatusActive,
			JoinDate:       mustParseTime("2024-01-15T00:00:00Z"),
			LastActive:     now.Add(-2 * time.Hour),
			EventsAttended: 12, Connections: 45,
		},
		{
			ID: "2", Name: "Carlos Santos", Email: "carlos.santos@email.com",
			Tier: domain.HierarchyInfinity, Status: domain.StatusActive,
			JoinDate:       mustParseTime("2024-02-20T00:00:00Z"),
			LastActive:     now.Add(-30 * time.Minute),
			EventsAttended: 8, Connections: 23,
		},
		{
			ID: "3", Name: "Maria Costa", Email: "maria.costa@email.com",
			Tier: domain.HierarchyDisruption, Status: domain.StatusPending,
			JoinDate:       mustParseTime("2024-12-01T00:00:00Z"),
			LastActive:     now.Add(-24 * time.Hour),
			EventsAttended: 2, Connections: 8,
		},
		{
			ID: "4", Name: "João Costa", Email: "joao.costa@email.com",
			Tier: domain.HierarchyInfinity, Status: domain.StatusSuspended,
			JoinDate:       mustParseTime("2024-03-10T00:00:00Z"),
			LastActive:     now.Add(-7 * 24 * time.Hour),
			EventsAttended: 15, Connections: 32,
		},
	}

	s.metrics = []domain.SystemMetric{
		{ID: "1", Title: "Total de Usuários", Value: "1,247", Change: "+12%", Trend: domain.TrendUp, Icon: "people"},
		{ID: "2", Title: "Usuários Ativos", Value: "892", Change: "+8%", Trend: domain.TrendUp, Icon: "pulse"},
		{ID: "3", Title: "Eventos Este Mês", Value: "24", Change: "+15%", Trend: domain.TrendUp, Icon: "calendar"},
		{ID: "4", Title: "Aprovações Pendentes", Value: "18", Change: "-5%", Trend: domain.TrendDown, Icon: "hourglass"},
	}

	s.rooms = []domain.ChatRoom{
		{ID: "1", Name: "Geral", LastMessage: "Ótima apresentação hoje!", LastMessageTime: now.Add(-5 * time.Minute), UnreadCount: 3, Participants: 45, IsActive: true},
		{ID: "2", Name: "Tecnologia", LastMessage: "Alguém já testou a nova API?", LastMessageTime: now.Add(-30 * time.Minute), UnreadCount: 1, Participants: 12, IsActive: false},
		{ID: "3", Name: "Networking", LastMessage: "Evento na próxima semana", LastMessageTime: now.Add(-2 * time.Hour), UnreadCount: 0, Participants: 28, IsActive: false},
	}

	s.messages = map[string][]domain.ChatMessage{
		"1": {
			{ID: "1", RoomID: "1", Text: "Bem-vindos ao chat geral!", Timestamp: now.Add(-2 * time.Hour), SenderID: "system", SenderName: "Sistema", Type: domain.MessageSystem},
			{ID: "2", RoomID: "1", Text: "Olá pessoal! Como estão?", Timestamp: now.Add(-90 * time.Minute), SenderID: "2", SenderName: "Ana Silva", Type: domain.MessageText},
			{ID: "3", RoomID: "1", Text: "Tudo bem! Animado para o evento de amanhã.", Timestamp: now.Add(-85 * time.Minute), SenderID: "1", SenderName: "Você", Type: domain.MessageText},
			{ID: "4", RoomID: "1", Text: "Vai ser incrível! Já confirmaram a presença?", Timestamp: now.Add(-80 * time.Minute), SenderID: "3", SenderName: "Carlos Santos", Type: domain.MessageText},
		},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	s.credentials = map[string]*domain.Credential{
		"admin@test.com": {
			UserID: "admin_001", Email: "admin@test.com", Name: "Administrador",
			PasswordHash: string(hash), UserType: domain.UserTypeAdmin,
		},
		"member@test.com": {
			UserID: "user_001", Email: "member@test.com", Name: "João Silva",
			PasswordHash: string(hash), UserType: domain.UserTypeMember,
			Hierarchy: domain.HierarchyInfinity,
		},
	}

	return s
}

func mustParseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		panic(err)
	}
	return t
}
