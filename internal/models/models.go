package models

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Project{},
		&Member{},
		&Stakeholder{},
		&Thread{},
		&ThreadAssignment{},
		&ThreadStakeholder{},
		&Task{},
		&ThreadTemplate{},
		&TemplateTask{},
	}
}
