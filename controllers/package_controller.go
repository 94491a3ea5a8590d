package controllers

import (
	"net/http"

	"resort-backend/models"
	"resort-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PackageController struct {
	Packages *services.PackageService
	log      *zap.Logger
}

func NewPackageController(svc *services.PackageService, log *zap.Logger) *PackageController {
	return &PackageController{Packages: svc, log: log}
}

func (ctrl *PackageController) GetPackages(c *gin.Context) {
	list, err := ctrl.Packages.List(c.Request.Context())
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (ctrl *PackageController) CreatePackage(c *gin.Context) {
	var p models.Package
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBadPayload(c, err)
		return
	}
	created, err := ctrl.Packages.Create(c.Request.Context(), p)
	if err != nil {
		respondError(c, ctrl.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
