package helpers

import (
	"fmt"
	"time"
)

func BuildPasswordResetHTML(name, resetLink string, ttl time.Duration) string {
	return BuildSimpleHTML(
		"Восстановление пароля",
		fmt.Sprintf(`Здравствуйте, %s!<br><br>
Мы получили запрос на сброс пароля от вашего аккаунта в фитнес-центре.<br>
Чтобы задать новый пароль, перейдите по ссылке (действует %d минут):<br><br>
<a href="%s" style="display:inline-block;padding:12px 24px;background:#2d74da;color:#fff;text-decoration:none;border-radius:5px;font-weight:bold;">Сбросить пароль</a><br><br>
<i>Если вы не запрашивали сброс — просто проигнорируйте это письмо.</i>`,
			name, int(ttl.Minutes()), resetLink),
	)
}

func BuildPasswordChangedHTML(name string, at time.Time) string {
	return BuildSimpleHTML(
		"Пароль изменён",
		fmt.Sprintf(`Здравствуйте, %s!<br><br>
Пароль вашего аккаунта был изменён %s.<br>
Если это были не вы — немедленно свяжитесь с администратором клуба.`,
			name, at.Format("02.01.2006 15:04")),
	)
}

func BuildSimpleHTML(title, body string) string {
	return fmt.Sprintf(`
<html>
  <body style="font-family:Arial,sans-serif; background:#f9f9f9;">
    <table width="100%%" cellpadding="0" cellspacing="0" bgcolor="#f9f9f9">
      <tr>
        <td align="center" style="padding:32px 0;">
          <table width="500" bgcolor="#fff" cellpadding="24" cellspacing="0" style="border-radius:8px; box-shadow:0 1px 6px #eee;">
            <tr>
              <td>
                <h2 style="color:#2d74da; margin-top:0;">%s</h2>
                <div style="font-size:16px; color:#222;">%s</div>
                <hr style="margin:32px 0 16px 0; border:0; border-top:1px solid #eee;">
                <div style="font-size:12px; color:#999;">Письмо сгенерировано автоматически. Не отвечайте на него.</div>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>
`, title, body)
}
