package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"curriculo/internal/auth"
	"curriculo/internal/config"
	"curriculo/internal/database"
)

// 运维命令：迁移表结构、创建账号或重置密码。生成的密码只打印一次。
func main() {
	var (
		migrateOnly = flag.Bool("migrate", false, "只执行表结构迁移")
		reset       = flag.Bool("reset-password", false, "为已有账号生成新密码")
		name        = flag.String("name", "", "新用户姓名（默认取邮箱前缀）")
		email       = flag.String("email", "", "账号邮箱（创建或重置时必填）")
		dbHost      = flag.String("db-host", "", "覆盖 DATABASE_HOST")
		dbPort      = flag.Int("db-port", 0, "覆盖 DATABASE_PORT")
		dbName      = flag.String("db-name", "", "覆盖 POSTGRES_DB")
	)
	flag.Parse()
	_ = godotenv.Load()

	e := strings.ToLower(strings.TrimSpace(*email))
	if !*migrateOnly && e == "" {
		log.Fatal("missing required flag: --email (or use --migrate)")
	}

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}
	overrideDatabase(&dbCfg, *dbHost, *dbPort, *dbName)

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if *migrateOnly {
		fmt.Println("migration completed")
		return
	}

	password, err := generateRandomPassword(18)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	if *reset {
		if err := resetPassword(db, e, hashed); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("已重置密码：%s\n", e)
	} else {
		if err := createUser(db, e, *name, hashed); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("已创建账号：%s\n", e)
	}
	fmt.Printf("密码: %s\n", password)
	fmt.Println("提示：该密码仅显示一次。")
}

func overrideDatabase(cfg *config.DatabaseConfig, host string, port int, name string) {
	if h := strings.TrimSpace(host); h != "" {
		cfg.Host = h
	}
	if port > 0 {
		cfg.Port = port
	}
	if n := strings.TrimSpace(name); n != "" {
		cfg.Name = n
	}
}

func createUser(db *gorm.DB, email, name, hashed string) error {
	var existing database.User
	switch err := db.Where("email = ?", email).First(&existing).Error; {
	case err == nil:
		return fmt.Errorf("user %q already exists (use --reset-password)", email)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("query user: %w", err)
	}

	displayName := strings.TrimSpace(name)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	user := database.User{Name: displayName, Email: email, PasswordHash: hashed}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func resetPassword(db *gorm.DB, email, hashed string) error {
	res := db.Model(&database.User{}).Where("email = ?", email).Update("password_hash", hashed)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %q not found", email)
	}
	return nil
}

func generateRandomPassword(bytesLen int) (string, error) {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
