package models

// DemoDocument returns the seeded board a fresh backend starts with.
func DemoDocument() *Document {
	return &Document{
		ProjectTitle: "Startup Fleet Demo",
		Teams: []*Team{
			{ID: "t1", Name: "Engineering", Icon: "⚙️", Color: "#FF6B6B", TotalShips: 12, Deployed: []*Deployment{
				{DeploymentID: "dep_t1_1", IslandID: "p1", KPIIDs: []string{"k1_1", "k1_2"}},
			}},
			{ID: "t2", Name: "Product", Icon: "💡", Color: "#4ECDC4", TotalShips: 6, Deployed: []*Deployment{
				{DeploymentID: "dep_t2_1", IslandID: "p1", KPIIDs: []string{"k1_3"}},
			}},
			{ID: "t3", Name: "Design", Icon: "🎨", Color: "#45B7D1", TotalShips: 4, Deployed: []*Deployment{}},
			{ID: "t4", Name: "Marketing", Icon: "📣", Color: "#F7DC6F", TotalShips: 8, Deployed: []*Deployment{
				{DeploymentID: "dep_t4_1", IslandID: "p4", KPIIDs: []string{"k4_2"}},
			}},
			{ID: "t5", Name: "Sales", Icon: "💼", Color: "#BB8FCE", TotalShips: 10, Deployed: []*Deployment{
				{DeploymentID: "dep_t5_1", IslandID: "p3", KPIIDs: []string{"k3_1"}},
			}},
			{ID: "t6", Name: "Success", Icon: "🤝", Color: "#F1948A", TotalShips: 6, Deployed: []*Deployment{}},
			{ID: "t7", Name: "Ops & Finance", Icon: "🏦", Color: "#90A4AE", TotalShips: 4, Deployed: []*Deployment{}},
		},
		MainGoals: []*MainGoal{
			{ID: "mg1", Title: "$100M ARR (Unicorn)", X: -250, Y: -600, Icon: "🦄",
				Description: "Achieve unicorn status by hitting $100M Annual Recurring Revenue with strong unit economics."},
			{ID: "mg2", Title: "Category Leadership", X: 250, Y: -600, Icon: "👑",
				Description: "Establish undisputed market leadership through product innovation and brand dominance."},
		},
		Islands: []*Island{
			{
				ID: "p1", MainGoalIDs: []string{"mg2"}, X: -400, Y: -100, Title: "Platform 2.0", Icon: "🚀",
				Description: "Launch the next-generation AI-powered platform to increase retention and upsell.",
				KPIs: []*KPI{
					{ID: "k1_1", Description: "Beta Launch with 50 customers", Deadline: "2026-03-01", Completed: true},
					{ID: "k1_2", Description: "99.99% Uptime SLA", Deadline: "2026-06-01"},
					{ID: "k1_3", Description: "Migrate 80% of legacy users", Deadline: "2026-12-01"},
				},
			},
			{
				ID: "p2", MainGoalIDs: []string{"mg1"}, X: -200, Y: 150, Title: "Global Expansion", Icon: "🌍",
				Description: "Expand footprint into EMEA and APAC regions to drive new logo acquisition.",
				KPIs: []*KPI{
					{ID: "k2_1", Description: "Hire EMEA Sales VP", Deadline: "2025-09-01"},
					{ID: "k2_2", Description: "Open London Office", Deadline: "2025-11-01", Completed: true},
					{ID: "k2_3", Description: "$5M ARR from APAC", Deadline: "2026-06-01"},
				},
			},
			{
				ID: "p3", MainGoalIDs: []string{"mg1"}, X: 200, Y: 150, Title: "Enterprise Sales", Icon: "🏙️",
				Description: "Move upmarket to close Fortune 500 deals with higher ACV.",
				KPIs: []*KPI{
					{ID: "k3_1", Description: "Close 10 Fortune 500 deals", Deadline: "2026-06-01"},
					{ID: "k3_2", Description: "SOC2 Type II Compliance", Deadline: "2025-12-01", Completed: true},
				},
			},
			{
				ID: "p4", MainGoalIDs: []string{"mg2"}, X: 400, Y: -100, Title: "Community & Brand", Icon: "❤️",
				Description: "Build a defensible moat through community engagement and thought leadership.",
				KPIs: []*KPI{
					{ID: "k4_1", Description: "Host Annual User Conference", Deadline: "2026-05-01"},
					{ID: "k4_2", Description: "10k Discord Members", Deadline: "2025-12-01", Completed: true},
					{ID: "k4_3", Description: "Launch Academy/Certification", Deadline: "2026-01-01"},
				},
			},
		},
	}
}
