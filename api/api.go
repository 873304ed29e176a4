/*
Copyright 2025 Extropy Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	extropy "github.com/extropy-ai/extropy"
	"github.com/extropy-ai/extropy/api/middleware"
	"github.com/extropy-ai/extropy/config"
	"github.com/extropy-ai/extropy/internal/apierror"
)

type Api struct {
	extropy *extropy.Extropy
	router  *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/accounts", a.CreateAccount)
	router.GET("/accounts/:id", a.GetAccount)
	router.GET("/accounts", a.GetAllAccounts)
	router.GET("/accounts/:id/balance", a.GetBalance)
	router.GET("/accounts/:id/history", a.GetHistory)
	router.GET("/accounts/:id/stats", a.GetStats)

	router.POST("/transfers", a.RecordTransfer)
	router.POST("/awards", a.RecordAward)
	router.POST("/attributions", a.RecordAttribution)
	router.GET("/transactions/:id", a.GetLedgerEntry)

	return a.router
}

func NewAPI(e *extropy.Extropy) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{extropy: e, router: r}
}

// respondError writes the taxonomy error with its mapped HTTP status. Errors
// that are not APIErrors surface as plain 500s.
func respondError(c *gin.Context, err error) {
	if apiErr, ok := err.(apierror.APIError); ok {
		c.JSON(apierror.MapErrorToHTTPStatus(apiErr), apiErr)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
