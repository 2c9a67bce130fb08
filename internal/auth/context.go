package auth

// Principal is the authenticated caller of a request: which tenant they
// belong to and which role they act as. It is passed explicitly into every
// engine call that needs it — never read from ambient state.
type Principal struct {
	TenantID string `gorm:"type:uuid;column:tenant_id;not null" json:"tenantId"`
	UserID   string `gorm:"type:varchar(100);column:user_id;primaryKey;not null" json:"userId"`
	Role     string `gorm:"type:varchar(100);column:role;not null" json:"role"`
	Token    string `gorm:"type:varchar(255);column:token;uniqueIndex;not null" json:"-"`
}

// TableName specifies the database table name for Principal
func (p *Principal) TableName() string {
	return "principals"
}
