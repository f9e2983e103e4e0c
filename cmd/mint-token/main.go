// Command mint-token signs an identity token for local development, in the
// format the API accepts from the identity provider.
package main

import (
    "fmt"
    "os"
    "strings"
    "time"

    "github.com/spf13/pflag"

    "github.com/iliyamo/auditorium-seat-reservation/internal/config"
    "github.com/iliyamo/auditorium-seat-reservation/internal/model"
    "github.com/iliyamo/auditorium-seat-reservation/internal/utils"
)

func main() {
    envFile := pflag.String("env-file", "", "dotenv file providing JWT_SECRET")
    id := pflag.String("id", "", "caller id (token subject)")
    role := pflag.String("role", string(model.RoleStudent), "STUDENT, STAFF or ADMIN")
    gender := pflag.String("gender", "", "MALE or FEMALE, for students")
    ttl := pflag.Duration("ttl", time.Hour, "token lifetime")
    pflag.Parse()

    cfg, err := config.Load(*envFile)
    if err != nil {
        fail(err)
    }
    caller := model.Caller{ID: *id, Role: model.Role(strings.ToUpper(*role))}
    if *gender != "" {
        g, ok := model.ParseGender(*gender)
        if !ok {
            fail(fmt.Errorf("unknown gender %q", *gender))
        }
        caller.Gender = g
    }
    tok, err := utils.NewAccessToken(cfg.JWT.Secret, caller, *ttl)
    if err != nil {
        fail(err)
    }
    fmt.Println(tok.Token)
}

func fail(err error) {
    fmt.Fprintln(os.Stderr, err)
    os.Exit(1)
}
