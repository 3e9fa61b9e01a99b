package handler

import "github.com/Kate44725/computing-management/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	QuotaRequest *QuotaRequestHandler
	Affiliation  *AffiliationHandler
	User         *UserHandler
	Project      *ProjectHandler
	Department   *DepartmentHandler
	Zone         *ZoneHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		QuotaRequest: NewQuotaRequestHandler(svc.QuotaRequest, svc.Approval),
		Affiliation:  NewAffiliationHandler(svc.Affiliation),
		User:         NewUserHandler(svc.User),
		Project:      NewProjectHandler(svc.Project),
		Department:   NewDepartmentHandler(svc.Department),
		Zone:         NewZoneHandler(svc.Zone),
	}
}
