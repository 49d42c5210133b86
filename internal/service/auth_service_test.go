package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bodega-pos/internal/events"
	"bodega-pos/internal/model"
	"bodega-pos/internal/repository"
	"bodega-pos/internal/repository/repotest"
	"bodega-pos/pkg/jwt"
)

func TestLoginIssuesSingleSession(t *testing.T) {
	db := repotest.NewDB(t)
	users := repository.NewUserRepo(db)
	rec := &events.Recorder{}
	auth := NewAuthService(users, jwt.NewManager("test-secret", time.Hour), rec)
	rosa := repotest.Operator(t, db, "Rosa", "Quispe", model.RoleSeller)

	if _, err := auth.Login(rosa.Email, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := auth.Login("nobody@bodega.pe", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: %v", err)
	}

	first, err := auth.Login(rosa.Email, "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if first.Role != model.RoleSeller || len(first.Privileges) == 0 {
		t.Fatalf("login response = %+v", first)
	}
	user, err := auth.Authenticate(first.Token)
	if err != nil || user.ID != rosa.ID {
		t.Fatalf("Authenticate = %+v, %v", user, err)
	}
	if _, err := auth.ValidateToken(first.Token); err != nil {
		t.Fatalf("ValidateToken right after login: %v", err)
	}

	second, err := auth.Login(rosa.Email, "secret123")
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}
	if _, err := auth.Authenticate(first.Token); !errors.Is(err, ErrSessionReplaced) {
		t.Fatalf("old token should be replaced: %v", err)
	}
	if _, err := auth.Authenticate(second.Token); err != nil {
		t.Fatalf("new token: %v", err)
	}

	if err := auth.Heartbeat(context.Background(), rosa.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	if evs := rec.Events(); len(evs) != 1 || evs[0].Type != events.UserStatusUpdate {
		t.Fatalf("events = %+v", evs)
	}
}

func TestValidateTokenIdleTimeout(t *testing.T) {
	db := repotest.NewDB(t)
	users := repository.NewUserRepo(db)
	svc := NewAuthService(users, jwt.NewManager("test-secret", 24*time.Hour), events.Noop{}).(*authService)
	rosa := repotest.Operator(t, db, "Rosa", "Quispe", model.RoleSeller)

	login, err := svc.Login(rosa.Email, "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	svc.now = func() time.Time { return time.Now().Add(sessionIdleTimeout + time.Minute) }
	if _, err := svc.ValidateToken(login.Token); !errors.Is(err, ErrSessionTimeout) {
		t.Fatalf("idle session: %v", err)
	}
}

func TestInactiveUserCannotLogin(t *testing.T) {
	db := repotest.NewDB(t)
	users := repository.NewUserRepo(db)
	auth := NewAuthService(users, jwt.NewManager("test-secret", time.Hour), events.Noop{})
	rosa := repotest.Operator(t, db, "Rosa", "Quispe", model.RoleSeller)
	rosa.IsActive = false
	if err := users.Update(rosa); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := auth.Login(rosa.Email, "secret123"); !errors.Is(err, ErrUserInactive) {
		t.Fatalf("inactive login: %v", err)
	}
}

func TestResetPasswordSignsOut(t *testing.T) {
	db := repotest.NewDB(t)
	users := repository.NewUserRepo(db)
	auth := NewAuthService(users, jwt.NewManager("test-secret", time.Hour), events.Noop{})
	rosa := repotest.Operator(t, db, "Rosa", "Quispe", model.RoleSeller)

	login, _ := auth.Login(rosa.Email, "secret123")
	if err := auth.ResetPassword(rosa.Email, "nope", "nuevo456"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("wrong old password: %v", err)
	}
	if err := auth.ResetPassword(rosa.Email, "secret123", "nuevo456"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := auth.Authenticate(login.Token); err == nil {
		t.Fatalf("token issued before the reset should stop working")
	}
	if _, err := auth.Login(rosa.Email, "nuevo456"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestUserServiceKeepsOneAdmin(t *testing.T) {
	db := repotest.NewDB(t)
	svc := NewUserService(repository.NewUserRepo(db))
	carlos := repotest.Operator(t, db, "Carlos", "Huaman", model.RoleAdmin)
	rosa := repotest.Operator(t, db, "Rosa", "Quispe", model.RoleSeller)

	if err := svc.DeleteUser(carlos.ID, rosa.ID); !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("deleting the last admin: %v", err)
	}
	if _, err := svc.UpdateUser(carlos.ID, &UpdateUserRequest{Email: carlos.Email, FirstName: "Carlos", Role: model.RoleSeller}); !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("demoting the last admin: %v", err)
	}
	if err := svc.DeleteUser(carlos.ID, carlos.ID); !errors.Is(err, ErrDeleteSelf) {
		t.Fatalf("self delete: %v", err)
	}

	ana, err := svc.CreateUser(&CreateUserRequest{Email: " Ana@Bodega.pe ", Password: "secret123", FirstName: "Ana", Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if ana.Email != "ana@bodega.pe" {
		t.Fatalf("email not normalized: %q", ana.Email)
	}
	if _, err := svc.CreateUser(&CreateUserRequest{Email: "ana@bodega.pe", Password: "secret123", FirstName: "Ana", Role: model.RoleSeller}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email: %v", err)
	}
	if _, err := svc.CreateUser(&CreateUserRequest{Email: "x@bodega.pe", Password: "secret123", FirstName: "X", Role: "CAJERO"}); err == nil {
		t.Fatalf("unknown role accepted")
	}

	if err := svc.DeleteUser(carlos.ID, ana.ID); err != nil {
		t.Fatalf("delete with another admin left: %v", err)
	}
	all, err := svc.GetAllUsers()
	if err != nil || len(all) != 2 {
		t.Fatalf("GetAllUsers = %d, %v", len(all), err)
	}
}

func TestProductServiceOnSQL(t *testing.T) {
	db := repotest.NewDB(t)
	rec := &events.Recorder{}
	svc := NewProductService(repository.NewProductRepo(db), rec, 10)
	ctx := context.Background()

	p := &model.Product{Name: "  Aceite Primor 1L ", Stock: 6, SalePrice: dec("11.50"), PurchasePrice: dec("9.80")}
	if err := svc.CreateProduct(ctx, p, rosaID); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if p.Name != "Aceite Primor 1L" || p.CreatedBy != rosaID {
		t.Fatalf("created %+v", p)
	}

	bad := &model.Product{Name: "Gratis", SalePrice: dec("-1")}
	if err := svc.CreateProduct(ctx, bad, rosaID); !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("negative price: %v", err)
	}
	if err := svc.CreateProduct(ctx, &model.Product{}, rosaID); err == nil {
		t.Fatalf("nameless product accepted")
	}

	upd, err := svc.UpdateProduct(ctx, p.ID, &model.Product{Name: "Aceite Primor 900ml", SalePrice: dec("10.90"), PurchasePrice: dec("9.10"), Stock: 500}, rosaID)
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if upd.Stock != 6 || upd.Name != "Aceite Primor 900ml" {
		t.Fatalf("updated %+v", upd)
	}
	if _, err := svc.UpdateProduct(ctx, 999, &model.Product{Name: "x"}, rosaID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("update unknown: %v", err)
	}

	low, err := svc.LowStock()
	if err != nil || len(low) != 1 {
		t.Fatalf("LowStock = %+v, %v", low, err)
	}
	if evs := rec.Events(); len(evs) != 2 || evs[0].Type != events.ProductCreated || evs[1].Type != events.ProductUpdated {
		t.Fatalf("events = %+v", evs)
	}

	if err := svc.DeleteProduct(p.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if _, err := svc.GetProduct(p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("deleted product: %v", err)
	}
}
